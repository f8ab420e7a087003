package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

const reminderCols = `id, household_id, category_id, title, body, due_at, done, notified, created_at, updated_at`

func scanReminder(scanner interface{ Scan(...any) error }) (*model.Reminder, error) {
	var r model.Reminder
	var due sql.NullTime
	var done, notified int
	err := scanner.Scan(&r.ID, &r.HouseholdID, &r.CategoryID, &r.Title, &r.Body, &due, &done, &notified, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		r.DueAt = &due.Time
	}
	r.Done = done != 0
	r.Notified = notified != 0
	return &r, nil
}

func (s *ReminderStore) GetByID(id int64) (*model.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) Create(householdID, categoryID int64, title, body string, dueAt *time.Time) (*model.Reminder, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO reminders (household_id, category_id, title, body, due_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		householdID, categoryID, title, body, nullTime(dueAt), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// ListByCategory returns a category's reminders, newest first. filter is
// "open", "done", or "" for all.
func (s *ReminderStore) ListByCategory(categoryID int64, filter string) ([]model.Reminder, error) {
	q := `SELECT ` + reminderCols + ` FROM reminders WHERE category_id = ?`
	switch filter {
	case "open":
		q += ` AND done = 0`
	case "done":
		q += ` AND done = 1`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(q, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *ReminderStore) Update(id, categoryID int64, title, body string, dueAt *time.Time) (*model.Reminder, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	// Changing the due time re-arms the notification.
	_, err := s.db.Exec(
		`UPDATE reminders SET category_id = ?, title = ?, body = ?, due_at = ?, notified = 0, updated_at = ? WHERE id = ?`,
		categoryID, title, body, nullTime(dueAt), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) SetDone(id int64, done bool) (*model.Reminder, error) {
	r, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`UPDATE reminders SET done = ?, category_id = ?, updated_at = ? WHERE id = ?`,
		boolToInt(done), r.CategoryID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set reminder done: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// DueUnnotified returns reminders whose time has arrived but which have not
// been pushed yet, across all households. The scheduler owns marking them.
func (s *ReminderStore) DueUnnotified(now time.Time) ([]model.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT `+reminderCols+` FROM reminders WHERE done = 0 AND notified = 0 AND due_at IS NOT NULL AND due_at <= ? ORDER BY due_at ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *ReminderStore) MarkNotified(id int64) error {
	_, err := s.db.Exec(`UPDATE reminders SET notified = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// CountOpen returns how many reminders in a category are not done.
func (s *ReminderStore) CountOpen(categoryID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reminders WHERE category_id = ? AND done = 0`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open reminders: %w", err)
	}
	return count, nil
}
