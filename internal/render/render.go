// Package render builds view models for category item lists. Everything
// here is a pure function of its inputs; no store access, no mutation.
package render

import (
	"sort"
	"strings"

	"github.com/hearth-app/hearth/internal/model"
)

// EmptyState distinguishes why a list has no rows.
type EmptyState int

const (
	// EmptyNone means the list has rows.
	EmptyNone EmptyState = iota
	// EmptyNoItems means the category itself is empty.
	EmptyNoItems
	// EmptyNoMatches means items exist but none matched the search.
	EmptyNoMatches
)

func (e EmptyState) String() string {
	switch e {
	case EmptyNoItems:
		return "no_items"
	case EmptyNoMatches:
		return "no_matches"
	default:
		return "none"
	}
}

// Style is the visual treatment of an item's status control.
type Style struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ListView is the fully prepared view of one category's items.
type ListView struct {
	CategoryID int64        `json:"category_id"`
	Rows       []model.Item `json:"rows"`
	Empty      EmptyState   `json:"empty"`
	OpenCount  int          `json:"open_count"`
	// Dropped counts items discarded because their category did not
	// match. Nonzero means an upstream filter bug; callers log it.
	Dropped int `json:"dropped,omitempty"`
}

// BuildListView prepares the rows for a category. Steps, in order:
// discard items from any other category (backstop, should never fire),
// apply the case-insensitive name search, then sort todo before done and
// newest first within each group.
func BuildListView(items []model.Item, search string, categoryID int64) ListView {
	view := ListView{CategoryID: categoryID}

	kept := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.CategoryID != categoryID {
			view.Dropped++
			continue
		}
		kept = append(kept, it)
	}

	search = strings.TrimSpace(search)
	if search != "" {
		needle := strings.ToLower(search)
		matched := kept[:0]
		for _, it := range kept {
			if strings.Contains(strings.ToLower(it.Name), needle) {
				matched = append(matched, it)
			}
		}
		kept = matched
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if (a.Status == model.StatusDone) != (b.Status == model.StatusDone) {
			return a.Status != model.StatusDone
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	view.Rows = kept
	for _, it := range kept {
		if it.Status == model.StatusTodo {
			view.OpenCount++
		}
	}
	if len(kept) == 0 {
		if search != "" {
			view.Empty = EmptyNoMatches
		} else {
			view.Empty = EmptyNoItems
		}
	}
	return view
}

// StatusStyle maps an item's status and urgency to its control style.
// Done wins over urgent: a completed item is never shown as urgent.
func StatusStyle(status string, urgent bool) Style {
	if status == model.StatusDone {
		return Style{Label: "done", Color: "green"}
	}
	if urgent {
		return Style{Label: "urgent", Color: "red"}
	}
	return Style{Label: "todo", Color: "accent"}
}
