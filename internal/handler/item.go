package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/render"
	"github.com/hearth-app/hearth/internal/shopping"
	"github.com/hearth-app/hearth/internal/store"
)

type ItemHandler struct {
	items      *store.ItemStore
	categories *store.CategoryStore
	bus        *live.Bus
	logger     *slog.Logger
}

func NewItemHandler(is *store.ItemStore, cs *store.CategoryStore, bus *live.Bus, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: is, categories: cs, bus: bus, logger: logger}
}

type itemRequest struct {
	CategoryID  int64   `json:"category_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Note        string  `json:"note" validate:"max=500"`
	Quantity    int     `json:"quantity" validate:"min=0,max=10000"`
	UnitPrice   float64 `json:"unit_price" validate:"min=0,max=100000"`
	ImageRef    string  `json:"image_ref" validate:"max=500"`
	Urgent      bool    `json:"urgent"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeValid(w, r, &req) {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if !categoryInHousehold(w, h.logger, h.categories, req.CategoryID, householdID) {
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	item, err := h.items.Create(householdID, req.CategoryID, strings.TrimSpace(req.Name), req.Description, req.Note, qty, req.UnitPrice, req.ImageRef, req.Urgent)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.publish(item, live.ActionCreated)
	writeJSON(w, http.StatusCreated, item)
}

// List returns the prepared view of one category's items. The renderer
// drops anything outside the category as a backstop; a nonzero drop is
// an upstream bug worth a log line.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !categoryInHousehold(w, h.logger, h.categories, categoryID, auth.HouseholdID(r.Context())) {
		return
	}

	items, err := h.items.ListByCategory(categoryID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	view := render.BuildListView(items, r.URL.Query().Get("search"), categoryID)
	if view.Dropped > 0 {
		h.logger.Warn("items outside selected category dropped at render",
			"category_id", categoryID, "dropped", view.Dropped)
	}
	if view.Rows == nil {
		view.Rows = []model.Item{}
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.CategoryID != item.CategoryID {
		// An item's category is set at creation and never moves.
		writeError(w, http.StatusBadRequest, "category_id cannot change")
		return
	}

	updated, err := h.items.Update(item.ID, item.CategoryID, strings.TrimSpace(req.Name), req.Description, req.Note, req.Quantity, req.UnitPrice, req.Urgent)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.items.Delete(item.ID); err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.publish(item, live.ActionDeleted)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type quantityRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

// AdjustQuantity bumps the quantity by ±1, clamped at zero.
func (h *ItemHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := h.items.AdjustQuantity(item.ID, req.Delta)
	if err != nil {
		h.logger.Error("adjust quantity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to adjust quantity")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

type priceRequest struct {
	UnitPrice float64 `json:"unit_price" validate:"min=0,max=100000"`
}

func (h *ItemHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req priceRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := h.items.SetPrice(item.ID, req.UnitPrice)
	if err != nil {
		h.logger.Error("set price", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set price")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

// ToggleStatus flips todo/done. The todo→done direction records a
// purchase event in the same transaction.
func (h *ItemHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	item, ok := h.owned(w, r)
	if !ok {
		return
	}

	updated, err := h.items.ToggleStatus(item.ID)
	if err != nil {
		h.logger.Error("toggle status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle status")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

type importRequest struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

// Import bulk-creates items from newline-separated list text.
func (h *ItemHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeValid(w, r, &req) {
		return
	}
	householdID := auth.HouseholdID(r.Context())
	if !categoryInHousehold(w, h.logger, h.categories, req.CategoryID, householdID) {
		return
	}
	parsed, truncated := shopping.ParseImportText(req.Text)
	if truncated {
		h.logger.Warn("import text over line cap, extra lines dropped",
			"category_id", req.CategoryID, "cap", shopping.MaxImportLines)
	}
	if len(parsed) == 0 {
		writeError(w, http.StatusBadRequest, "no items to import")
		return
	}

	created := make([]model.Item, 0, len(parsed))
	for _, p := range parsed {
		if len(p.Name) > 100 {
			continue
		}
		item, err := h.items.Create(householdID, req.CategoryID, p.Name, "", p.Note, int(p.Qty), 0, "", p.Urgent)
		if err != nil {
			h.logger.Error("import item", "name", p.Name, "error", err)
			continue
		}
		created = append(created, *item)
	}

	if len(created) > 0 {
		h.bus.Publish(live.Event{
			Collection:  live.CollItems,
			HouseholdID: householdID,
			CategoryID:  req.CategoryID,
			Action:      live.ActionCreated,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"imported": len(created), "items": created, "truncated": truncated})
}

// ListTemplates returns the built-in preset templates.
func (h *ItemHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shopping.PresetTemplates)
}

type applyTemplateRequest struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	TemplateID string `json:"template_id" validate:"required"`
}

// ApplyTemplate creates a template's items inside a category.
func (h *ItemHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req applyTemplateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	householdID := auth.HouseholdID(r.Context())
	if !categoryInHousehold(w, h.logger, h.categories, req.CategoryID, householdID) {
		return
	}

	tpl, ok := shopping.PresetTemplate(req.TemplateID)
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	added := 0
	for _, ti := range tpl.Items {
		if _, err := h.items.Create(householdID, req.CategoryID, ti.Name, ti.Desc, ti.Note, int(ti.Qty), 0, "", false); err != nil {
			h.logger.Error("apply template item", "name", ti.Name, "error", err)
			continue
		}
		added++
	}

	if added > 0 {
		h.bus.Publish(live.Event{
			Collection:  live.CollItems,
			HouseholdID: householdID,
			CategoryID:  req.CategoryID,
			Action:      live.ActionCreated,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]int{"added": added})
}

// ListPurchases returns the purchase history for a date range
// (YYYY-MM-DD, both optional).
func (h *ItemHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	events, err := h.items.ListPurchases(householdID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.logger.Error("list purchases", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}
	if events == nil {
		events = []model.PurchaseEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *ItemHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	item, err := h.items.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil || item.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}


func (h *ItemHandler) publish(item *model.Item, action string) {
	h.bus.Publish(live.Event{
		Collection:  live.CollItems,
		HouseholdID: item.HouseholdID,
		CategoryID:  item.CategoryID,
		ID:          item.ID,
		Action:      action,
	})
}
