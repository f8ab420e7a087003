package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, logger: logger}
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	hh, err := h.households.GetByID(householdID)
	if err != nil || hh == nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load household")
		return
	}
	writeJSON(w, http.StatusOK, hh)
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Rename is owner-only, enforced by middleware.
func (h *HouseholdHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decodeValid(w, r, &req) {
		return
	}

	hh, err := h.households.Rename(auth.HouseholdID(r.Context()), strings.TrimSpace(req.Name))
	if err != nil {
		h.logger.Error("rename household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rename household")
		return
	}
	if hh == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}
	writeJSON(w, http.StatusOK, hh)
}

func (h *HouseholdHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.households.ListMembers(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.HouseholdMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

// RemoveMember is owner-only. Owners cannot remove themselves.
func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if userID == auth.UserID(r.Context()) {
		writeError(w, http.StatusBadRequest, "cannot remove yourself")
		return
	}

	if err := h.households.RemoveMember(auth.HouseholdID(r.Context()), userID); err != nil {
		h.logger.Error("remove member", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateInvite is owner-only. The returned token is shared out of band.
func (h *HouseholdHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	inv, err := h.households.CreateInvite(auth.HouseholdID(r.Context()), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.logger.Error("create invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create invite")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// AcceptInvite joins the caller to the inviting household as a member.
func (h *HouseholdHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if !decodeValid(w, r, &req) {
		return
	}

	inv, err := h.households.AcceptInvite(req.Token, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("accept invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to accept invite")
		return
	}
	if inv == nil {
		writeError(w, http.StatusBadRequest, "invalid or used invite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"household_id": inv.HouseholdID})
}
