package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

// ErrNoCategory is returned when a write would leave an item without a
// category. Every item belongs to exactly one category at all times.
var ErrNoCategory = errors.New("item requires a category")

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemCols = `id, household_id, category_id, name, description, note, quantity, unit_price, image_ref, status, urgent, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var urgent int
	err := scanner.Scan(
		&it.ID, &it.HouseholdID, &it.CategoryID, &it.Name, &it.Description, &it.Note,
		&it.Quantity, &it.UnitPrice, &it.ImageRef, &it.Status, &urgent,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Urgent = urgent != 0
	return &it, nil
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (s *ItemStore) Create(householdID, categoryID int64, name, description, note string, quantity int, unitPrice float64, imageRef string, urgent bool) (*model.Item, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO items (household_id, category_id, name, description, note, quantity, unit_price, image_ref, status, urgent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, categoryID, name, description, note, quantity, round2(unitPrice), imageRef, model.StatusTodo, boolToInt(urgent), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// ListByCategory returns every item in one category, oldest first. Display
// ordering (todo before done, newest first) is the renderer's job.
func (s *ItemStore) ListByCategory(categoryID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE category_id = ? ORDER BY created_at ASC, id ASC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(id, categoryID int64, name, description, note string, quantity int, unitPrice float64, urgent bool) (*model.Item, error) {
	if categoryID == 0 {
		return nil, ErrNoCategory
	}
	_, err := s.db.Exec(
		`UPDATE items SET category_id = ?, name = ?, description = ?, note = ?, quantity = ?, unit_price = ?, urgent = ?, updated_at = ? WHERE id = ?`,
		categoryID, name, description, note, quantity, round2(unitPrice), boolToInt(urgent), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// AdjustQuantity changes quantity by delta, clamped at zero. The category
// is re-asserted in the same write so a partial update can never detach the
// item from its category.
func (s *ItemStore) AdjustQuantity(id int64, delta int) (*model.Item, error) {
	it, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, nil
	}
	qty := it.Quantity + delta
	if qty < 0 {
		qty = 0
	}
	_, err = s.db.Exec(
		`UPDATE items SET quantity = ?, category_id = ?, updated_at = ? WHERE id = ?`,
		qty, it.CategoryID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}
	return s.GetByID(id)
}

// SetPrice updates the unit price, re-asserting the category.
func (s *ItemStore) SetPrice(id int64, unitPrice float64) (*model.Item, error) {
	it, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`UPDATE items SET unit_price = ?, category_id = ?, updated_at = ? WHERE id = ?`,
		round2(unitPrice), it.CategoryID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set price: %w", err)
	}
	return s.GetByID(id)
}

// ToggleStatus flips an item between todo and done. The todo→done
// transition appends a PurchaseEvent in the same transaction, snapshotting
// the item and category as they are right now; done→todo records nothing.
func (s *ItemStore) ToggleStatus(id int64) (*model.Item, error) {
	it, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if it.Status == model.StatusDone {
		_, err = tx.Exec(
			`UPDATE items SET status = ?, category_id = ?, updated_at = ? WHERE id = ?`,
			model.StatusTodo, it.CategoryID, now, id,
		)
		if err != nil {
			return nil, fmt.Errorf("toggle status: %w", err)
		}
	} else {
		_, err = tx.Exec(
			`UPDATE items SET status = ?, category_id = ?, updated_at = ? WHERE id = ?`,
			model.StatusDone, it.CategoryID, now, id,
		)
		if err != nil {
			return nil, fmt.Errorf("toggle status: %w", err)
		}

		var catLabel, catImage string
		err = tx.QueryRow(`SELECT label, image_ref FROM categories WHERE id = ?`, it.CategoryID).Scan(&catLabel, &catImage)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("snapshot category: %w", err)
		}

		cost := round2(float64(it.Quantity) * it.UnitPrice)
		_, err = tx.Exec(
			`INSERT INTO purchase_events (household_id, ts, date, item_id, item_name_snapshot, item_image_snapshot, category_id, category_name_snapshot, category_image_snapshot, quantity_at_purchase, unit_price, cost)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.HouseholdID, now, now.Format("2006-01-02"), it.ID, it.Name, it.ImageRef, it.CategoryID, catLabel, catImage, it.Quantity, it.UnitPrice, cost,
		)
		if err != nil {
			return nil, fmt.Errorf("log purchase: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// CountTodo returns how many todo items a category holds and how many of
// those are flagged urgent.
func (s *ItemStore) CountTodo(categoryID int64) (total, urgent int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(urgent), 0) FROM items WHERE category_id = ? AND status = ?`,
		categoryID, model.StatusTodo,
	).Scan(&total, &urgent)
	if err != nil {
		return 0, 0, fmt.Errorf("count todo: %w", err)
	}
	return total, urgent, nil
}

const purchaseCols = `id, household_id, ts, date, item_id, item_name_snapshot, item_image_snapshot, category_id, category_name_snapshot, category_image_snapshot, quantity_at_purchase, unit_price, cost`

func scanPurchase(scanner interface{ Scan(...any) error }) (*model.PurchaseEvent, error) {
	var p model.PurchaseEvent
	err := scanner.Scan(
		&p.ID, &p.HouseholdID, &p.Timestamp, &p.Date, &p.ItemID, &p.ItemNameSnapshot,
		&p.ItemImageSnapshot, &p.CategoryID, &p.CategoryNameSnapshot, &p.CategoryImageSnapshot,
		&p.QuantityAtPurchase, &p.UnitPrice, &p.Cost,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPurchases returns purchase events in [from, to], newest first. Dates
// are YYYY-MM-DD strings; an empty bound is unbounded.
func (s *ItemStore) ListPurchases(householdID int64, from, to string) ([]model.PurchaseEvent, error) {
	if from == "" {
		from = "0001-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}
	rows, err := s.db.Query(
		`SELECT `+purchaseCols+` FROM purchase_events WHERE household_id = ? AND date >= ? AND date <= ? ORDER BY ts DESC`,
		householdID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var events []model.PurchaseEvent
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		events = append(events, *p)
	}
	return events, rows.Err()
}

// SpendSince sums purchase costs on or after the given date.
func (s *ItemStore) SpendSince(householdID int64, date string) (float64, error) {
	var total float64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(cost), 0) FROM purchase_events WHERE household_id = ? AND date >= ?`,
		householdID, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("spend since: %w", err)
	}
	return total, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
