package model

import "time"

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskFinished   = "finished"
	TaskCanceled   = "canceled"
)

// TaskOpen reports whether a task still counts toward a category's open
// badge. Finished and canceled tasks do not.
func TaskOpen(status string) bool {
	return status != TaskFinished && status != TaskCanceled
}

type Task struct {
	ID             int64      `json:"id"`
	HouseholdID    int64      `json:"household_id"`
	CategoryID     int64      `json:"category_id"`
	Name           string     `json:"name"`
	Details        string     `json:"details"`
	ImageRef       string     `json:"image_ref"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Responsibility *int64     `json:"responsibility"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
