package model

import "time"

type Reminder struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	CategoryID  int64      `json:"category_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	DueAt       *time.Time `json:"due_at"`
	Done        bool       `json:"done"`
	Notified    bool       `json:"notified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
