package handler

import (
	"log/slog"
	"net/http"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/store"
)

// PreferenceHandler stores small per-user UI settings, such as the
// category last selected on each screen.
type PreferenceHandler struct {
	prefs  *store.PreferenceStore
	logger *slog.Logger
}

func NewPreferenceHandler(ps *store.PreferenceStore, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefs: ps, logger: logger}
}

func (h *PreferenceHandler) All(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	prefs, err := h.prefs.All(ac.HouseholdID, ac.UserID)
	if err != nil {
		h.logger.Error("load preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type preferenceRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"max=500"`
}

func (h *PreferenceHandler) Set(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req preferenceRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.prefs.Set(ac.HouseholdID, ac.UserID, req.Key, req.Value); err != nil {
		h.logger.Error("set preference", "key", req.Key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
