package live

import (
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/hearth-app/hearth/internal/model"
)

// ErrTornDown is returned by operations on a feed after Teardown.
var ErrTornDown = errors.New("feed torn down")

// State of an ItemFeed.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLive
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	default:
		return "idle"
	}
}

// Snapshot is one replace-not-merge delivery: the full item set for the
// category the feed was on when the snapshot was taken.
type Snapshot struct {
	Generation uint64
	CategoryID int64
	Items      []model.Item
}

// ItemSource is the one-shot query the feed issues; both the initial fetch
// and every re-query after a change event go through it.
type ItemSource interface {
	ListByCategory(categoryID int64) ([]model.Item, error)
}

// PrefSaver persists the last selected category. May be nil.
type PrefSaver interface {
	Set(householdID, userID int64, key, value string) error
}

// ItemFeed owns the item list for exactly one selected category at a time.
// Selecting a category cancels the previous subscription, clears the list,
// fetches once for an immediate paint, and attaches a live re-query loop.
// Every delivery carries the generation it was started under; a delivery
// whose generation is no longer current is discarded, so a slow response
// for a previously selected category can never reach the consumer.
type ItemFeed struct {
	source ItemSource
	bus    *Bus
	prefs  PrefSaver
	logger *slog.Logger

	householdID int64
	userID      int64
	prefKey     string

	mu         sync.Mutex // also guards sends on out
	state      State
	categoryID int64
	gen        uint64
	cancel     func()
	closed     bool
	out        chan Snapshot
}

// NewItemFeed creates a feed in Idle. prefKey names the preference the
// selected category is persisted under (e.g. "shopping.category").
func NewItemFeed(source ItemSource, bus *Bus, prefs PrefSaver, householdID, userID int64, prefKey string, logger *slog.Logger) *ItemFeed {
	f := &ItemFeed{
		source:      source,
		bus:         bus,
		prefs:       prefs,
		logger:      logger,
		householdID: householdID,
		userID:      userID,
		prefKey:     prefKey,
		out:         make(chan Snapshot, 16),
	}
	return f
}

// Snapshots returns the delivery channel. Closed by Teardown.
func (f *ItemFeed) Snapshots() <-chan Snapshot {
	return f.out
}

// State returns the current state and selected category.
func (f *ItemFeed) State() (State, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.categoryID
}

// SelectCategory switches the feed to categoryID. Re-selecting the current
// category is a no-op: no new subscription, no cleared list, no delivery.
func (f *ItemFeed) SelectCategory(categoryID int64) error {
	f.mu.Lock()

	if f.closed {
		f.mu.Unlock()
		return ErrTornDown
	}
	if f.categoryID == categoryID && f.state != StateIdle {
		f.mu.Unlock()
		return nil
	}

	// Supersede any in-flight work for the previous category.
	f.gen++
	gen := f.gen
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state = StateLoading
	f.categoryID = categoryID

	// Clear the displayed list immediately so nothing from the previous
	// category lingers while the new one loads.
	f.emitLocked(Snapshot{Generation: gen, CategoryID: categoryID, Items: nil})

	events, cancel := f.bus.Subscribe(16)
	f.cancel = cancel
	f.mu.Unlock()

	if f.prefs != nil {
		if err := f.prefs.Set(f.householdID, f.userID, f.prefKey, formatID(categoryID)); err != nil {
			f.logger.Warn("persist selected category", "error", err)
		}
	}

	go f.fetch(categoryID, gen)
	go f.watch(events, categoryID, gen)
	return nil
}

// Teardown cancels the live subscription and closes the snapshot channel.
func (f *ItemFeed) Teardown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state = StateIdle
	f.categoryID = 0
	close(f.out)
}

// fetch is the one-shot read issued on entry to Loading. A fetch failure
// is logged but not fatal: the live subscription is already attached and
// will deliver once the store recovers.
func (f *ItemFeed) fetch(categoryID int64, gen uint64) {
	items, err := f.source.ListByCategory(categoryID)
	if err != nil {
		f.logger.Error("item fetch", "category", categoryID, "error", err)
		return
	}
	f.deliver(gen, categoryID, items)
}

// watch re-queries the category on every item change in the household. The
// queried set is authoritative; events only say "something changed".
func (f *ItemFeed) watch(events <-chan Event, categoryID int64, gen uint64) {
	for ev := range events {
		if ev.Collection != CollItems || ev.HouseholdID != f.householdID {
			continue
		}
		items, err := f.source.ListByCategory(categoryID)
		if err != nil {
			f.logger.Error("item re-query", "category", categoryID, "error", err)
			continue
		}
		f.deliver(gen, categoryID, items)
	}
}

// deliver hands a snapshot to the consumer unless it is stale. Staleness
// is a single generation comparison: anything started before the latest
// SelectCategory carries an old generation and is dropped here.
func (f *ItemFeed) deliver(gen uint64, categoryID int64, items []model.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.gen {
		f.logger.Debug("discarded stale delivery", "category", categoryID, "generation", gen)
		return
	}
	f.state = StateLive
	f.emitLocked(Snapshot{Generation: gen, CategoryID: categoryID, Items: items})
}

// emitLocked sends without blocking; a full consumer loses intermediate
// snapshots but always gets a fresh one afterward. Caller holds the lock.
func (f *ItemFeed) emitLocked(s Snapshot) {
	select {
	case f.out <- s:
	default:
		f.logger.Debug("snapshot dropped, consumer slow", "category", s.CategoryID)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
