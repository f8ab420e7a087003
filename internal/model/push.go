package model

import "time"

// PushSubscription is one browser/device endpoint registered for web push.
type PushSubscription struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	UserID      int64     `json:"user_id"`
	Endpoint    string    `json:"endpoint"`
	P256dh      string    `json:"-"`
	Auth        string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
