package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hearth-app/hearth/internal/backup"
	"github.com/hearth-app/hearth/internal/handler"
	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/middleware"
	"github.com/hearth-app/hearth/internal/push"
	"github.com/hearth-app/hearth/internal/store"
	ws "github.com/hearth-app/hearth/internal/websocket"
)

// PushConfig carries the VAPID key pair. Push features stay off when
// either key is empty.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

type Server struct {
	db             *sql.DB
	bus            *live.Bus
	hub            *ws.Hub
	relayCancel    func()
	authH          *handler.AuthHandler
	categoryH      *handler.CategoryHandler
	itemH          *handler.ItemHandler
	taskH          *handler.TaskHandler
	noteH          *handler.NoteHandler
	reminderH      *handler.ReminderHandler
	preferenceH    *handler.PreferenceHandler
	householdH     *handler.HouseholdHandler
	summaryH       *handler.SummaryHandler
	backupH        *handler.BackupHandler
	pushH          *handler.PushHandler
	sessionDeps    ws.SessionDeps
	sessionStore   *store.SessionStore
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	backupManager  *backup.Manager
	pushScheduler  *push.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, pushCfg PushConfig, logger *slog.Logger) *Server {
	bus := live.NewBus(logger.With("component", "bus"))
	hub := ws.NewHub(logger.With("component", "websocket"))
	relayCancel := ws.Relay(bus, hub)

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	categoryStore := store.NewCategoryStore(db)
	itemStore := store.NewItemStore(db)
	taskStore := store.NewTaskStore(db)
	noteStore := store.NewNoteStore(db)
	reminderStore := store.NewReminderStore(db)
	preferenceStore := store.NewPreferenceStore(db)
	pushStore := store.NewPushStore(db)

	backupMgr := backup.NewManager(backupCfg, db, logger.With("component", "backup"))

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, reminderStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:             db,
		bus:            bus,
		hub:            hub,
		relayCancel:    relayCancel,
		authH:          handler.NewAuthHandler(userStore, householdStore, sessionStore, logger.With("component", "auth")),
		categoryH:      handler.NewCategoryHandler(categoryStore, bus, logger.With("component", "category")),
		itemH:          handler.NewItemHandler(itemStore, categoryStore, bus, logger.With("component", "item")),
		taskH:          handler.NewTaskHandler(taskStore, categoryStore, bus, logger.With("component", "task")),
		noteH:          handler.NewNoteHandler(noteStore, categoryStore, bus, logger.With("component", "note")),
		reminderH:      handler.NewReminderHandler(reminderStore, categoryStore, bus, logger.With("component", "reminder")),
		preferenceH:    handler.NewPreferenceHandler(preferenceStore, logger.With("component", "preference")),
		householdH:     handler.NewHouseholdHandler(householdStore, logger.With("component", "household")),
		summaryH:       handler.NewSummaryHandler(categoryStore, itemStore, taskStore, reminderStore, logger.With("component", "summary")),
		backupH:        handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		pushH:          pushH,
		sessionDeps:    ws.SessionDeps{Bus: bus, Items: itemStore, Categories: categoryStore, Prefs: preferenceStore},
		sessionStore:   sessionStore,
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(),
		backupManager:  backupMgr,
		pushScheduler:  pushSched,
		logger:         logger,
	}
}

// Bus returns the event bus, shared with live feeds.
func (s *Server) Bus() *live.Bus {
	return s.bus
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the reminder push scheduler, nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// Close releases the bus relay.
func (s *Server) Close() {
	s.relayCancel()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.householdStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Category routes
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("PUT /api/categories/{id}", s.categoryH.Update)
	mux.HandleFunc("PUT /api/categories/{id}/reorder", s.categoryH.Reorder)
	mux.HandleFunc("POST /api/categories/{id}/pin", s.categoryH.TogglePinned)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	// Item routes
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/categories/{id}/items", s.itemH.List)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/quantity", s.itemH.AdjustQuantity)
	mux.HandleFunc("POST /api/items/{id}/price", s.itemH.SetPrice)
	mux.HandleFunc("POST /api/items/{id}/status", s.itemH.ToggleStatus)
	mux.HandleFunc("POST /api/items/import", s.itemH.Import)
	mux.HandleFunc("GET /api/templates", s.itemH.ListTemplates)
	mux.HandleFunc("POST /api/templates/apply", s.itemH.ApplyTemplate)
	mux.HandleFunc("GET /api/purchases", s.itemH.ListPurchases)

	// Task routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/categories/{id}/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/categories/{id}/timeline", s.taskH.Timeline)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.taskH.SetStatus)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Note routes
	mux.HandleFunc("POST /api/notes", s.noteH.Create)
	mux.HandleFunc("GET /api/categories/{id}/notes", s.noteH.List)
	mux.HandleFunc("PUT /api/notes/{id}", s.noteH.Update)
	mux.HandleFunc("POST /api/notes/{id}/pin", s.noteH.TogglePinned)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.Delete)

	// Reminder routes
	mux.HandleFunc("POST /api/reminders", s.reminderH.Create)
	mux.HandleFunc("GET /api/categories/{id}/reminders", s.reminderH.List)
	mux.HandleFunc("PUT /api/reminders/{id}", s.reminderH.Update)
	mux.HandleFunc("POST /api/reminders/{id}/done", s.reminderH.SetDone)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.reminderH.Delete)

	// Preferences
	mux.HandleFunc("GET /api/preferences", s.preferenceH.All)
	mux.HandleFunc("PUT /api/preferences", s.preferenceH.Set)

	// Household routes; mutations are owner-only
	mux.HandleFunc("GET /api/household", s.householdH.Get)
	mux.Handle("PUT /api/household", middleware.RequireOwner(http.HandlerFunc(s.householdH.Rename)))
	mux.HandleFunc("GET /api/household/members", s.householdH.Members)
	mux.Handle("DELETE /api/household/members/{id}", middleware.RequireOwner(http.HandlerFunc(s.householdH.RemoveMember)))
	mux.Handle("POST /api/household/invites", middleware.RequireOwner(http.HandlerFunc(s.householdH.CreateInvite)))
	mux.HandleFunc("POST /api/household/invites/accept", s.householdH.AcceptInvite)

	// Dashboard summary
	mux.HandleFunc("GET /api/summary", s.summaryH.Get)

	// Backup routes (owner-only)
	mux.Handle("GET /api/backup/status", middleware.RequireOwner(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backup/run", middleware.RequireOwner(http.HandlerFunc(s.backupH.Run)))

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestSend)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.sessionDeps, s.logger.With("component", "websocket")))
}
