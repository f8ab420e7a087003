package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

const noteCols = `id, household_id, category_id, title, body, image_ref, pinned, created_at, updated_at`

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var pinned int
	err := scanner.Scan(&n.ID, &n.HouseholdID, &n.CategoryID, &n.Title, &n.Body, &n.ImageRef, &pinned, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Pinned = pinned != 0
	return &n, nil
}

func (s *NoteStore) GetByID(id int64) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *NoteStore) Create(householdID, categoryID int64, title, body, imageRef string, pinned bool) (*model.Note, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO notes (household_id, category_id, title, body, image_ref, pinned, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, categoryID, title, body, imageRef, boolToInt(pinned), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// ListByCategory returns a category's notes, pinned first, then most
// recently updated.
func (s *NoteStore) ListByCategory(categoryID int64) ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT `+noteCols+` FROM notes WHERE category_id = ? ORDER BY pinned DESC, updated_at DESC, id DESC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) Update(id, categoryID int64, title, body, imageRef string, pinned bool) (*model.Note, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	_, err := s.db.Exec(
		`UPDATE notes SET category_id = ?, title = ?, body = ?, image_ref = ?, pinned = ?, updated_at = ? WHERE id = ?`,
		categoryID, title, body, imageRef, boolToInt(pinned), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) TogglePinned(id int64) (*model.Note, error) {
	n, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`UPDATE notes SET pinned = ?, category_id = ?, updated_at = ? WHERE id = ?`,
		boolToInt(!n.Pinned), n.CategoryID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle pinned: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// Count returns how many notes a category holds.
func (s *NoteStore) Count(categoryID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}
