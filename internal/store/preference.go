package store

import (
	"database/sql"
	"fmt"
)

// PreferenceStore holds small per-user key/value settings: last selected
// category per module, theme, view mode, gantt window. Keys are namespaced
// with dots ("shopping.category", "gantt.view_start").
type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the value for key, or "" when unset.
func (s *PreferenceStore) Get(householdID, userID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM preferences WHERE household_id = ? AND user_id = ? AND key = ?`,
		householdID, userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

func (s *PreferenceStore) Set(householdID, userID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (household_id, user_id, key, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT (household_id, user_id, key) DO UPDATE SET value = excluded.value`,
		householdID, userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// All returns every preference for the user.
func (s *PreferenceStore) All(householdID, userID int64) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT key, value FROM preferences WHERE household_id = ? AND user_id = ? ORDER BY key`,
		householdID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}
