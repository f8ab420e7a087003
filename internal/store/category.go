package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryCols = `id, household_id, kind, label, image_ref, sort_order, pinned, color, created_at, updated_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	var pinned int
	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.Kind, &c.Label, &c.ImageRef, &c.SortOrder, &pinned, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Pinned = pinned != 0
	return &c, nil
}

// ListByKind returns a kind's categories in display order: pinned first,
// then ascending sort_order.
func (s *CategoryStore) ListByKind(householdID int64, kind model.CollectionKind) ([]model.Category, error) {
	rows, err := s.db.Query(
		`SELECT `+categoryCols+` FROM categories WHERE household_id = ? AND kind = ? ORDER BY pinned DESC, sort_order ASC`,
		householdID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) GetByID(id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) Create(householdID int64, kind model.CollectionKind, label, imageRef, color string, pinned bool) (*model.Category, error) {
	now := time.Now().UTC()
	// New categories go to the end of the strip; millisecond sort keys
	// never collide in practice for hand-entered categories.
	result, err := s.db.Exec(
		`INSERT INTO categories (household_id, kind, label, image_ref, sort_order, pinned, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, kind, label, imageRef, now.UnixMilli(), boolToInt(pinned), color, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CategoryStore) Update(id int64, label, imageRef, color string, pinned bool) (*model.Category, error) {
	_, err := s.db.Exec(
		`UPDATE categories SET label = ?, image_ref = ?, color = ?, pinned = ?, updated_at = ? WHERE id = ?`,
		label, imageRef, color, boolToInt(pinned), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetByID(id)
}

func (s *CategoryStore) UpdateSortOrder(id, sortOrder int64) error {
	_, err := s.db.Exec(
		`UPDATE categories SET sort_order = ?, updated_at = ? WHERE id = ?`,
		sortOrder, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update sort order: %w", err)
	}
	return nil
}

// Delete removes a category. Items, tasks, notes and reminders under it
// cascade via foreign keys.
func (s *CategoryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
