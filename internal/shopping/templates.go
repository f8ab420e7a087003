package shopping

// Template is a named bundle of shopping items applied into a category
// in one call.
type Template struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Items []TemplateItem `json:"items"`
}

// TemplateItem is one entry of a template.
type TemplateItem struct {
	Name string `json:"name"`
	Qty  int64  `json:"qty"`
	Desc string `json:"desc,omitempty"`
	Note string `json:"note,omitempty"`
}

// PresetTemplates are the built-in starter lists.
var PresetTemplates = []Template{
	{
		ID:   "weekend",
		Name: "Weekend shopping",
		Items: []TemplateItem{
			{Name: "Challah", Qty: 2},
			{Name: "Kiddush wine", Qty: 1, Note: "pick a sweet one"},
			{Name: "Green salad", Qty: 1, Desc: "lettuce, tomatoes, cucumbers"},
			{Name: "Whole chicken", Qty: 1},
			{Name: "Chocolate cake", Qty: 1},
		},
	},
	{
		ID:   "basics",
		Name: "Weekly basics",
		Items: []TemplateItem{
			{Name: "Milk 3%", Qty: 2},
			{Name: "Sliced bread", Qty: 1},
			{Name: "Eggs", Qty: 1, Note: "tray of 12"},
			{Name: "Yellow cheese", Qty: 1},
			{Name: "Mixed vegetables", Qty: 1},
		},
	},
	{
		ID:   "hosting",
		Name: "Evening hosting",
		Items: []TemplateItem{
			{Name: "Cheese platter", Qty: 1},
			{Name: "French bread", Qty: 2},
			{Name: "Cut vegetables", Qty: 1},
			{Name: "White wine", Qty: 2},
			{Name: "Fresh fruit", Qty: 1},
		},
	},
}

// PresetTemplate looks up a preset by id.
func PresetTemplate(id string) (Template, bool) {
	for _, t := range PresetTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
