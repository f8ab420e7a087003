package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, household_id, category_id, name, details, image_ref, start_date, end_date, responsibility, status, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var start, end sql.NullTime
	var resp sql.NullInt64
	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.CategoryID, &t.Name, &t.Details, &t.ImageRef,
		&start, &end, &resp, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		t.StartDate = &start.Time
	}
	if end.Valid {
		t.EndDate = &end.Time
	}
	if resp.Valid {
		t.Responsibility = &resp.Int64
	}
	return &t, nil
}

// clampDates enforces end >= start by pulling the end date up to the start
// rather than rejecting the write.
func clampDates(start, end *time.Time) (*time.Time, *time.Time) {
	if start != nil && end != nil && end.Before(*start) {
		e := *start
		return start, &e
	}
	return start, end
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) Create(householdID, categoryID int64, name, details, imageRef string, start, end *time.Time, responsibility *int64, status string) (*model.Task, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	if status == "" {
		status = model.TaskTodo
	}
	start, end = clampDates(start, end)
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, category_id, name, details, image_ref, start_date, end_date, responsibility, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, categoryID, name, details, imageRef, nullTime(start), nullTime(end), nullInt(responsibility), status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) ListByCategory(categoryID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE category_id = ? ORDER BY created_at ASC, id ASC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id, categoryID int64, name, details, imageRef string, start, end *time.Time, responsibility *int64, status string) (*model.Task, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	start, end = clampDates(start, end)
	_, err := s.db.Exec(
		`UPDATE tasks SET category_id = ?, name = ?, details = ?, image_ref = ?, start_date = ?, end_date = ?, responsibility = ?, status = ?, updated_at = ? WHERE id = ?`,
		categoryID, name, details, imageRef, nullTime(start), nullTime(end), nullInt(responsibility), status, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// SetStatus changes only the status, re-asserting the category.
func (s *TaskStore) SetStatus(id int64, status string) (*model.Task, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`UPDATE tasks SET status = ?, category_id = ?, updated_at = ? WHERE id = ?`,
		status, t.CategoryID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// CountOpen returns how many tasks in a category are neither finished nor
// canceled.
func (s *TaskStore) CountOpen(categoryID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE category_id = ? AND status NOT IN (?, ?)`,
		categoryID, model.TaskFinished, model.TaskCanceled,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open tasks: %w", err)
	}
	return count, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
