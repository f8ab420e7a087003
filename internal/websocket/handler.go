package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/hearth-app/hearth/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as Hub clients scoped to the caller's
// household, each with a live feed session. Must run inside RequireAuth.
func HandleWebSocket(hub *Hub, deps SessionDeps, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, ac.HouseholdID)
		session := NewSession(client, deps, ac.HouseholdID, ac.UserID, logger)
		client.inbound = session.Handle
		defer session.Close()

		client.Run(r.Context())
	}
}
