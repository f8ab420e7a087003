package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hearth-app/hearth/internal/model"
)

// A trigger deletes the row as soon as it is updated, so the item exists
// for the ownership check but is gone by the time the mutation re-reads
// it. The handler must answer 404, not dereference the missing result.
func TestAdjustQuantityRowVanishesMidMutation(t *testing.T) {
	e := newEnv(t, model.KindShopping)
	h := NewItemHandler(e.items, e.categories, e.bus, e.logger)

	item, err := e.items.Create(e.household.ID, e.category.ID, "Milk", "", "", 1, 0, "", false)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := e.db.Exec(`CREATE TRIGGER vanish AFTER UPDATE ON items BEGIN
		DELETE FROM items WHERE id = NEW.id;
	END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	rec := httptest.NewRecorder()
	h.AdjustQuantity(rec, e.request(http.MethodPost, "/api/items/1/quantity", `{"delta":1}`, item.ID))
	checkStatus(t, rec, http.StatusNotFound)

	rec = httptest.NewRecorder()
	h.SetPrice(rec, e.request(http.MethodPost, "/api/items/1/price", `{"unit_price":2.5}`, item.ID))
	checkStatus(t, rec, http.StatusNotFound)
}

func TestUpdateRowVanishesMidMutation(t *testing.T) {
	e := newEnv(t, model.KindShopping)
	h := NewItemHandler(e.items, e.categories, e.bus, e.logger)

	item, err := e.items.Create(e.household.ID, e.category.ID, "Eggs", "", "", 1, 0, "", false)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := e.db.Exec(`CREATE TRIGGER vanish AFTER UPDATE ON items BEGIN
		DELETE FROM items WHERE id = NEW.id;
	END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	body := `{"category_id":` + jsonInt(e.category.ID) + `,"name":"Eggs","quantity":2}`
	rec := httptest.NewRecorder()
	h.Update(rec, e.request(http.MethodPut, "/api/items/1", body, item.ID))
	checkStatus(t, rec, http.StatusNotFound)
}

func TestAdjustQuantityBumps(t *testing.T) {
	e := newEnv(t, model.KindShopping)
	h := NewItemHandler(e.items, e.categories, e.bus, e.logger)

	item, err := e.items.Create(e.household.ID, e.category.ID, "Bread", "", "", 1, 0, "", false)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	rec := httptest.NewRecorder()
	h.AdjustQuantity(rec, e.request(http.MethodPost, "/api/items/1/quantity", `{"delta":1}`, item.ID))
	checkStatus(t, rec, http.StatusOK)

	var got model.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", got.Quantity)
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
