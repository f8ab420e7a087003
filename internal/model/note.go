package model

import "time"

type Note struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	CategoryID  int64     `json:"category_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ImageRef    string    `json:"image_ref"`
	Pinned      bool      `json:"pinned"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
