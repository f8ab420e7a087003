package live

import (
	"log/slog"
	"sync"

	"github.com/hearth-app/hearth/internal/model"
)

// CategorySource lists the ordered categories for one household kind.
type CategorySource interface {
	ListByKind(householdID int64, kind model.CollectionKind) ([]model.Category, error)
}

// CategoryFeed keeps an ordered category list current for one household
// and kind, and maintains a CounterSet covering exactly the categories
// in that list. When the category set changes the counter set is torn
// down and rebuilt wholesale rather than patched.
type CategoryFeed struct {
	bus         *Bus
	source      CategorySource
	counter     Counter
	logger      *slog.Logger
	householdID int64
	kind        model.CollectionKind

	mu         sync.Mutex
	categories []model.Category
	counters   *CounterSet
	cancel     func()
	out        chan []model.Category
	closed     bool
}

func NewCategoryFeed(bus *Bus, source CategorySource, counter Counter, logger *slog.Logger, householdID int64, kind model.CollectionKind) *CategoryFeed {
	return &CategoryFeed{
		bus:         bus,
		source:      source,
		counter:     counter,
		logger:      logger.With("component", "categoryfeed", "kind", kind),
		householdID: householdID,
		kind:        kind,
		out:         make(chan []model.Category, 8),
	}
}

// Start primes the list from the store and begins following change
// events. Query errors on refresh keep the last known good list.
func (cf *CategoryFeed) Start() error {
	cats, err := cf.source.ListByKind(cf.householdID, cf.kind)
	if err != nil {
		return err
	}

	cf.mu.Lock()
	if cf.closed {
		cf.mu.Unlock()
		return nil
	}
	cf.categories = cats
	cf.rebuildCountersLocked(cats)
	events, cancel := cf.bus.Subscribe(16)
	cf.cancel = cancel
	cf.emitLocked(cats)
	cf.mu.Unlock()

	go cf.watch(events)
	return nil
}

func (cf *CategoryFeed) watch(events <-chan Event) {
	for ev := range events {
		if ev.Collection != CollCategories || ev.HouseholdID != cf.householdID {
			continue
		}
		if ev.Kind != "" && ev.Kind != cf.kind {
			continue
		}
		cf.refresh()
	}
}

func (cf *CategoryFeed) refresh() {
	cats, err := cf.source.ListByKind(cf.householdID, cf.kind)

	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.closed {
		return
	}
	if err != nil {
		// Keep serving the previous list; the next event retries.
		cf.logger.Error("category refresh failed", "error", err)
		return
	}

	changed := !sameCategorySet(cf.categories, cats)
	cf.categories = cats
	if changed {
		cf.rebuildCountersLocked(cats)
	}
	cf.emitLocked(cats)
}

// rebuildCountersLocked replaces the counter set wholesale. Must be
// called with cf.mu held.
func (cf *CategoryFeed) rebuildCountersLocked(cats []model.Category) {
	if cf.counters != nil {
		cf.counters.Close()
	}
	cf.counters = NewCounterSet(cf.bus, cf.counter, cf.logger, cf.householdID)
	for _, c := range cats {
		cf.counters.Watch(c.ID)
	}
}

func (cf *CategoryFeed) emitLocked(cats []model.Category) {
	snap := make([]model.Category, len(cats))
	copy(snap, cats)
	select {
	case cf.out <- snap:
	default:
		cf.logger.Debug("dropped category snapshot, receiver slow")
	}
}

// Updates delivers a fresh copy of the ordered list after every change.
func (cf *CategoryFeed) Updates() <-chan []model.Category {
	return cf.out
}

// Categories returns a copy of the current ordered list.
func (cf *CategoryFeed) Categories() []model.Category {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	snap := make([]model.Category, len(cf.categories))
	copy(snap, cf.categories)
	return snap
}

// Counts reports the live tally for one category in the list.
func (cf *CategoryFeed) Counts(categoryID int64) Counts {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.counters == nil {
		return Counts{CategoryID: categoryID}
	}
	return cf.counters.Counts(categoryID)
}

// Summary rolls up every category's tally for the household badge.
func (cf *CategoryFeed) Summary() Summary {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.counters == nil {
		return Summary{}
	}
	return cf.counters.Summary()
}

// Close stops the feed and its counter set. Safe to call more than once.
func (cf *CategoryFeed) Close() {
	cf.mu.Lock()
	if cf.closed {
		cf.mu.Unlock()
		return
	}
	cf.closed = true
	cancel := cf.cancel
	counters := cf.counters
	cf.counters = nil
	close(cf.out)
	cf.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if counters != nil {
		counters.Close()
	}
}

// sameCategorySet reports whether two lists contain the same category
// IDs, ignoring order and metadata.
func sameCategorySet(a, b []model.Category) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]struct{}, len(a))
	for _, c := range a {
		seen[c.ID] = struct{}{}
	}
	for _, c := range b {
		if _, ok := seen[c.ID]; !ok {
			return false
		}
	}
	return true
}
