// Package live implements category-scoped live queries over the store: an
// in-process change bus, a per-client item feed with stale-delivery
// protection, an ordered category feed, and per-category todo counters.
package live

import (
	"log/slog"
	"sync"

	"github.com/hearth-app/hearth/internal/model"
)

// Collections that publish change events.
const (
	CollCategories = "categories"
	CollItems      = "items"
	CollTasks      = "tasks"
	CollNotes      = "notes"
	CollReminders  = "reminders"
)

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is one change notification. Handlers publish an Event after every
// successful write; feeds re-query the store when a relevant one arrives.
type Event struct {
	Collection  string
	Kind        model.CollectionKind
	HouseholdID int64
	CategoryID  int64
	ID          int64
	Action      string
}

// Bus is an in-process publish/subscribe fan-out. Subscribers receive
// events on a buffered channel; a slow subscriber drops events rather than
// blocking writers, which is safe because consumers re-query state instead
// of applying deltas.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int64]chan Event
	nextID int64
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[int64]chan Event),
		logger: logger,
	}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// func. Cancel is idempotent; after cancel the channel is closed.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full; it will catch up on its next re-query.
			b.logger.Debug("bus: dropped event", "collection", ev.Collection, "action", ev.Action)
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
