package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hearth-app/hearth/internal/auth"
	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/push"
	"github.com/hearth-app/hearth/internal/store"
)

type PushHandler struct {
	subs    *store.PushStore
	service *push.Service
	logger  *slog.Logger
}

func NewPushHandler(ps *store.PushStore, service *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: ps, service: service, logger: logger}
}

// VAPIDKey returns the public key browsers need to subscribe.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"key": h.service.VAPIDPublicKey()})
}

// List returns the household's registered endpoints. Encryption keys stay
// server-side.
func (h *PushHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.ListByHousehold(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,max=1000"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req subscribeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	sub, err := h.subs.Create(ac.HouseholdID, ac.UserID, req.Endpoint, req.P256dh, req.Auth)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.subs.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// TestSend pushes a test notification to every subscription in the
// caller's household.
func (h *PushHandler) TestSend(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	subs, err := h.subs.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}

	sent := 0
	payload := push.Payload{Title: "Hearth", Body: "Push notifications are working.", URL: "/"}
	for i := range subs {
		if err := h.service.Send(&subs[i], payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				h.subs.DeleteByEndpoint(subs[i].Endpoint)
				continue
			}
			h.logger.Warn("test push failed", "error", err)
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
