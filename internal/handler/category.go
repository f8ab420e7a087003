package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

type CategoryHandler struct {
	categories *store.CategoryStore
	bus        *live.Bus
	logger     *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, bus *live.Bus, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: cs, bus: bus, logger: logger}
}

type categoryRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=shopping tasks notes reminders"`
	Label    string `json:"label" validate:"required,max=100"`
	ImageRef string `json:"image_ref" validate:"max=500"`
	Color    string `json:"color" validate:"max=32"`
	Pinned   bool   `json:"pinned"`
}

// List returns the household's ordered categories for one kind.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := model.CollectionKind(r.URL.Query().Get("kind"))
	if !model.ValidKind(kind) {
		writeError(w, http.StatusBadRequest, "kind must be one of: shopping tasks notes reminders")
		return
	}

	cats, err := h.categories.ListByKind(auth.HouseholdID(r.Context()), kind)
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	cat, err := h.categories.Create(householdID, model.CollectionKind(req.Kind), strings.TrimSpace(req.Label), req.ImageRef, req.Color, req.Pinned)
	if err != nil {
		h.logger.Error("create category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.publish(cat, live.ActionCreated)
	writeJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := h.categories.Update(cat.ID, strings.TrimSpace(req.Label), req.ImageRef, req.Color, req.Pinned)
	if err != nil {
		h.logger.Error("update category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

// TogglePinned flips whether the category sorts ahead of unpinned ones.
func (h *CategoryHandler) TogglePinned(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}

	updated, err := h.categories.Update(cat.ID, cat.Label, cat.ImageRef, cat.Color, !cat.Pinned)
	if err != nil {
		h.logger.Error("toggle category pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle pin")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

type reorderRequest struct {
	SortOrder int64 `json:"sort_order"`
}

// Reorder moves one category within the navigation strip.
func (h *CategoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.categories.UpdateSortOrder(cat.ID, req.SortOrder); err != nil {
		h.logger.Error("reorder category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reorder category")
		return
	}

	h.publish(cat, live.ActionUpdated)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// Delete removes a category; items, tasks, notes, and reminders under it
// cascade away.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.categories.Delete(cat.ID); err != nil {
		h.logger.Error("delete category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	h.publish(cat, live.ActionDeleted)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// owned loads the category from the path id and checks it belongs to the
// caller's household.
func (h *CategoryHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Category, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	cat, err := h.categories.GetByID(id)
	if err != nil {
		h.logger.Error("get category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get category")
		return nil, false
	}
	if cat == nil || cat.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusNotFound, "category not found")
		return nil, false
	}
	return cat, true
}

func (h *CategoryHandler) publish(cat *model.Category, action string) {
	h.bus.Publish(live.Event{
		Collection:  live.CollCategories,
		Kind:        cat.Kind,
		HouseholdID: cat.HouseholdID,
		CategoryID:  cat.ID,
		ID:          cat.ID,
		Action:      action,
	})
}
