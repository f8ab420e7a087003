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

type NoteHandler struct {
	notes      *store.NoteStore
	categories *store.CategoryStore
	bus        *live.Bus
	logger     *slog.Logger
}

func NewNoteHandler(ns *store.NoteStore, cs *store.CategoryStore, bus *live.Bus, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: ns, categories: cs, bus: bus, logger: logger}
}

type noteRequest struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	Title      string `json:"title" validate:"required,max=100"`
	Body       string `json:"body" validate:"max=10000"`
	ImageRef   string `json:"image_ref" validate:"max=500"`
	Pinned     bool   `json:"pinned"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	householdID := auth.HouseholdID(r.Context())
	if !categoryInHousehold(w, h.logger, h.categories, req.CategoryID, householdID) {
		return
	}

	note, err := h.notes.Create(householdID, req.CategoryID, strings.TrimSpace(req.Title), req.Body, req.ImageRef, req.Pinned)
	if err != nil {
		h.logger.Error("create note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	h.publish(note, live.ActionCreated)
	writeJSON(w, http.StatusCreated, note)
}

// List returns a category's notes, pinned first.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !categoryInHousehold(w, h.logger, h.categories, categoryID, auth.HouseholdID(r.Context())) {
		return
	}

	notes, err := h.notes.ListByCategory(categoryID)
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	note, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.CategoryID != note.CategoryID {
		writeError(w, http.StatusBadRequest, "category_id cannot change")
		return
	}

	updated, err := h.notes.Update(note.ID, note.CategoryID, strings.TrimSpace(req.Title), req.Body, req.ImageRef, req.Pinned)
	if err != nil {
		h.logger.Error("update note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update note")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

func (h *NoteHandler) TogglePinned(w http.ResponseWriter, r *http.Request) {
	note, ok := h.owned(w, r)
	if !ok {
		return
	}

	updated, err := h.notes.TogglePinned(note.ID)
	if err != nil {
		h.logger.Error("toggle pinned", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle pin")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	h.publish(updated, live.ActionUpdated)
	writeJSON(w, http.StatusOK, updated)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	note, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(note.ID); err != nil {
		h.logger.Error("delete note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}

	h.publish(note, live.ActionDeleted)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *NoteHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Note, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	note, err := h.notes.GetByID(id)
	if err != nil {
		h.logger.Error("get note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return nil, false
	}
	if note == nil || note.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, http.StatusNotFound, "note not found")
		return nil, false
	}
	return note, true
}


func (h *NoteHandler) publish(note *model.Note, action string) {
	h.bus.Publish(live.Event{
		Collection:  live.CollNotes,
		HouseholdID: note.HouseholdID,
		CategoryID:  note.CategoryID,
		ID:          note.ID,
		Action:      action,
	})
}
