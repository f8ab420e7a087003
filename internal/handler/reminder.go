package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

type ReminderHandler struct {
	reminders  *store.ReminderStore
	categories *store.CategoryStore
	bus        *live.Bus
	logger     *slog.Logger
}

func NewReminderHandler(rs *store.ReminderStore, cs *store.CategoryStore, bus *live.Bus, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: rs, categories: cs, bus: bus, logger: logger}
}

type reminderRequest struct {
	CategoryID int64      `json:"category_id" validate:"required"`
	Title      string     `json:"title" validate:"required,max=100"`
	Body       string     `json:"body" validate:"max=2000"`
	DueAt      *time.Time `json:"due_at"`
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decodeValid(w, r, &req) {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if !categoryInHousehold(w, h.logger, h.categories, req.CategoryID, householdID) {
		return
	}

	rem, err := h.reminders.Create(householdID, req.CategoryID, strings.TrimSpace(req.Title), req.Body, req.DueAt)
	if err != nil {
		h.logger.Error("create reminder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}

	h.publish(rem, live.ActionCreated)
	writeJSON(w, http.StatusCreated, rem)
}

// List returns a category's reminders. ?filter= selects open, done or
// all (default open).
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !categoryInHousehold(w, h.logger, h.categories, categoryID, auth.HouseholdID(r.Context())) {
		return
	}

	filter := r.URL.Query().Get("filter")
	switch filter {
	case "", "open", "done", "all":
	default:
		writeError(w, http.StatusBadRequest, "filter must be open, done or all")
		return
	}

	reminders, err := h.reminders.ListByCategory(categoryID, filter)
	if err != nil {
		h.logger.Error("list reminders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.CategoryID != rem.CategoryID {
		writeError(w, http.StatusBadRequest, "category_id cannot change")
		return
	}

	updated, err := h.reminders.Update(rem.ID, rem.CategoryID, strings.TrimSpace(req.Title), req.Body, req.DueAt)
	if err != nil {
		h.logger.Error("update reminder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reminder")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

type reminderDoneRequest struct {
	Done bool `json:"done"`
}

func (h *ReminderHandler) SetDone(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req reminderDoneRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := h.reminders.SetDone(rem.ID, req.Done)
	if err != nil {
		h.logger.Error("set reminder done", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reminder")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rem, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.reminders.Delete(rem.ID); err != nil {
		h.logger.Error("delete reminder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}

	h.publish(rem, live.ActionDeleted)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ReminderHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Reminder, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	rem, err := h.reminders.GetByID(id)
	if err != nil {
		h.logger.Error("get reminder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get reminder")
		return nil, false
	}
	if rem == nil || rem.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusNotFound, "reminder not found")
		return nil, false
	}
	return rem, true
}


func (h *ReminderHandler) publish(rem *model.Reminder, action string) {
	h.bus.Publish(live.Event{
		Collection:  live.CollReminders,
		HouseholdID: rem.HouseholdID,
		CategoryID:  rem.CategoryID,
		ID:          rem.ID,
		Action:      action,
	})
}
