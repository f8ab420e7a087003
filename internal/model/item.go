package model

import "time"

// Item statuses. An item is either still wanted or already purchased;
// there is no third state.
const (
	StatusTodo = "todo"
	StatusDone = "done"
)

type Item struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Note        string    `json:"note"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	ImageRef    string    `json:"image_ref"`
	Status      string    `json:"status"`
	Urgent      bool      `json:"urgent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PurchaseEvent is an append-only snapshot written when an item transitions
// to done. It is denormalized on purpose: later edits to the item or its
// category must not change recorded history.
type PurchaseEvent struct {
	ID                    int64     `json:"id"`
	HouseholdID           int64     `json:"household_id"`
	Timestamp             time.Time `json:"ts"`
	Date                  string    `json:"date"`
	ItemID                int64     `json:"item_id"`
	ItemNameSnapshot      string    `json:"item_name_snapshot"`
	ItemImageSnapshot     string    `json:"item_image_snapshot"`
	CategoryID            int64     `json:"category_id"`
	CategoryNameSnapshot  string    `json:"category_name_snapshot"`
	CategoryImageSnapshot string    `json:"category_image_snapshot"`
	QuantityAtPurchase    int       `json:"quantity_at_purchase"`
	UnitPrice             float64   `json:"unit_price"`
	Cost                  float64   `json:"cost"`
}
