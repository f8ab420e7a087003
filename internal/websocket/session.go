package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/hearth-app/hearth/internal/live"
	"github.com/hearth-app/hearth/internal/model"
)

// ItemBackend is what a live session needs from the item store.
type ItemBackend interface {
	live.ItemSource
	live.Counter
}

// SessionDeps carries the shared backends a session builds its feeds on.
type SessionDeps struct {
	Bus        *live.Bus
	Items      ItemBackend
	Categories live.CategorySource
	Prefs      live.PrefSaver
}

// Session drives the category-scoped live feeds for one connection. The
// client asks to watch a kind's category list and to select a single
// category; the session streams category lists with their counters and
// replace-not-merge item snapshots back over the socket.
type Session struct {
	client *Client
	deps   SessionDeps
	logger *slog.Logger

	householdID int64
	userID      int64

	mu      sync.Mutex
	feed    *live.ItemFeed
	catFeed *live.CategoryFeed
	closed  bool
}

func NewSession(client *Client, deps SessionDeps, householdID, userID int64, logger *slog.Logger) *Session {
	return &Session{
		client:      client,
		deps:        deps,
		logger:      logger,
		householdID: householdID,
		userID:      userID,
	}
}

type inboundMessage struct {
	Type string `json:"type"`
	Kind string `json:"kind,omitempty"`
	ID   int64  `json:"id,omitempty"`
}

type categoryRow struct {
	model.Category
	Open   int `json:"open"`
	Urgent int `json:"urgent"`
}

type categoriesMessage struct {
	Type       string        `json:"type"`
	Kind       string        `json:"kind"`
	Categories []categoryRow `json:"categories"`
	Summary    live.Summary  `json:"summary"`
}

type itemsMessage struct {
	Type       string       `json:"type"`
	Generation uint64       `json:"generation"`
	CategoryID int64        `json:"category_id"`
	Items      []model.Item `json:"items"`
}

// Handle processes one inbound client message.
func (s *Session) Handle(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Debug("bad client message", "error", err)
		return
	}

	switch msg.Type {
	case "watch_categories":
		s.watchCategories(model.CollectionKind(msg.Kind))
	case "select_category":
		s.selectCategory(msg.ID)
	default:
		s.logger.Debug("unknown client message", "type", msg.Type)
	}
}

// watchCategories starts (or restarts, on a kind change) the category
// feed for one kind.
func (s *Session) watchCategories(kind model.CollectionKind) {
	if !model.ValidKind(kind) {
		s.logger.Debug("watch for unknown kind", "kind", kind)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.catFeed != nil {
		s.catFeed.Close()
	}
	cf := live.NewCategoryFeed(s.deps.Bus, s.deps.Categories, s.deps.Items, s.logger, s.householdID, kind)
	s.catFeed = cf
	s.mu.Unlock()

	if err := cf.Start(); err != nil {
		s.logger.Error("start category feed", "kind", kind, "error", err)
		return
	}
	go s.pumpCategories(cf, string(kind))
}

// selectCategory switches the item feed. The feed itself guarantees
// idempotent re-selection and stale-delivery discard.
func (s *Session) selectCategory(categoryID int64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.feed == nil {
		s.feed = live.NewItemFeed(s.deps.Items, s.deps.Bus, s.deps.Prefs, s.householdID, s.userID, "shopping.category", s.logger)
		go s.pumpItems(s.feed)
	}
	feed := s.feed
	s.mu.Unlock()

	if err := feed.SelectCategory(categoryID); err != nil {
		s.logger.Debug("select category", "error", err)
	}
}

func (s *Session) pumpCategories(cf *live.CategoryFeed, kind string) {
	for cats := range cf.Updates() {
		rows := make([]categoryRow, 0, len(cats))
		for _, c := range cats {
			counts := cf.Counts(c.ID)
			rows = append(rows, categoryRow{Category: c, Open: counts.Open, Urgent: counts.Urgent})
		}
		s.write(categoriesMessage{
			Type:       "categories",
			Kind:       kind,
			Categories: rows,
			Summary:    cf.Summary(),
		})
	}
}

func (s *Session) pumpItems(feed *live.ItemFeed) {
	for snap := range feed.Snapshots() {
		items := snap.Items
		if items == nil {
			items = []model.Item{}
		}
		s.write(itemsMessage{
			Type:       "items",
			Generation: snap.Generation,
			CategoryID: snap.CategoryID,
			Items:      items,
		})
	}
}

func (s *Session) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshal session message", "error", err)
		return
	}
	s.client.Send(data)
}

// Close tears down both feeds, ending the pump goroutines.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	feed := s.feed
	catFeed := s.catFeed
	s.mu.Unlock()

	if feed != nil {
		feed.Teardown()
	}
	if catFeed != nil {
		catFeed.Close()
	}
}
