package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearth-app/hearth/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	if err := scanner.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// Create makes a household with the given user as its owner, in one
// transaction.
func (s *HouseholdStore) Create(name string, ownerID int64) (*model.Household, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO households (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		id, ownerID, model.RoleOwner,
	)
	if err != nil {
		return nil, fmt.Errorf("insert owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT id, name, created_at FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) Rename(id int64, name string) (*model.Household, error) {
	_, err := s.db.Exec(`UPDATE households SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetMember(householdID, userID int64) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := s.db.QueryRow(
		`SELECT household_id, user_id, role, joined_at FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	).Scan(&m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (s *HouseholdStore) ListMembers(householdID int64) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT household_id, user_id, role, joined_at FROM household_members WHERE household_id = ? ORDER BY joined_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		var m model.HouseholdMember
		if err := rows.Scan(&m.HouseholdID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// FirstForUser returns the id of the user's oldest household membership,
// or 0 when the user belongs to none.
func (s *HouseholdStore) FirstForUser(userID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT household_id FROM household_members WHERE user_id = ? ORDER BY joined_at ASC LIMIT 1`,
		userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("first household: %w", err)
	}
	return id, nil
}

func (s *HouseholdStore) AddMember(householdID, userID int64, role string) error {
	_, err := s.db.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		householdID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *HouseholdStore) RemoveMember(householdID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// CreateInvite issues a single-use invite token for joining the household.
func (s *HouseholdStore) CreateInvite(householdID int64, email string) (*model.Invite, error) {
	token := uuid.NewString()
	result, err := s.db.Exec(
		`INSERT INTO household_invites (household_id, token, email) VALUES (?, ?, ?)`,
		householdID, token, email,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getInvite(id)
}

func (s *HouseholdStore) getInvite(id int64) (*model.Invite, error) {
	var inv model.Invite
	var accepted sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, household_id, token, email, created_at, accepted_at FROM household_invites WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.HouseholdID, &inv.Token, &inv.Email, &inv.CreatedAt, &accepted)
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	if accepted.Valid {
		inv.AcceptedAt = &accepted.Time
	}
	return &inv, nil
}

// AcceptInvite adds the user as a member and consumes the token. Returns
// nil if the token is unknown or already used.
func (s *HouseholdStore) AcceptInvite(token string, userID int64) (*model.Invite, error) {
	var inv model.Invite
	var accepted sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, household_id, token, email, created_at, accepted_at FROM household_invites WHERE token = ?`, token,
	).Scan(&inv.ID, &inv.HouseholdID, &inv.Token, &inv.Email, &inv.CreatedAt, &accepted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	if accepted.Valid {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR IGNORE INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		inv.HouseholdID, userID, model.RoleMember,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`UPDATE household_invites SET accepted_at = ? WHERE id = ?`, now, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("consume invite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	inv.AcceptedAt = &now
	return &inv, nil
}
