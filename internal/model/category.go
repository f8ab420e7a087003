package model

import "time"

// CollectionKind identifies which module a category belongs to. Each kind
// has its own independent category set and navigation strip.
type CollectionKind string

const (
	KindShopping  CollectionKind = "shopping"
	KindTasks     CollectionKind = "tasks"
	KindNotes     CollectionKind = "notes"
	KindReminders CollectionKind = "reminders"
)

// ValidKind reports whether k names a known collection kind.
func ValidKind(k CollectionKind) bool {
	switch k {
	case KindShopping, KindTasks, KindNotes, KindReminders:
		return true
	}
	return false
}

type Category struct {
	ID          int64          `json:"id"`
	HouseholdID int64          `json:"household_id"`
	Kind        CollectionKind `json:"kind"`
	Label       string         `json:"label"`
	ImageRef    string         `json:"image_ref"`
	SortOrder   int64          `json:"sort_order"`
	Pinned      bool           `json:"pinned"`
	Color       string         `json:"color"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
