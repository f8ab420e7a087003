package live

import (
	"log/slog"
	"sync"
)

// Counts holds the open-item tally for a single category.
type Counts struct {
	CategoryID int64 `json:"category_id"`
	Open       int   `json:"open"`
	Urgent     int   `json:"urgent"`
}

// Summary is the household-wide roll-up across every watched category.
type Summary struct {
	Open   int `json:"open"`
	Urgent int `json:"urgent"`
}

// Counter answers the open/urgent tally for one category. The item and
// task stores both satisfy it.
type Counter interface {
	CountTodo(categoryID int64) (open, urgent int, err error)
}

// CounterSet maintains one live watcher per category and recounts a
// category whenever an item event lands in it. Counts never go negative
// and a failed recount keeps the previous tally.
type CounterSet struct {
	bus         *Bus
	counter     Counter
	logger      *slog.Logger
	householdID int64

	mu      sync.Mutex
	counts  map[int64]Counts
	cancels map[int64]func()
	closed  bool
}

func NewCounterSet(bus *Bus, counter Counter, logger *slog.Logger, householdID int64) *CounterSet {
	return &CounterSet{
		bus:         bus,
		counter:     counter,
		logger:      logger.With("component", "counterset"),
		householdID: householdID,
		counts:      make(map[int64]Counts),
		cancels:     make(map[int64]func()),
	}
}

// Watch adds a category to the set and primes its count. Watching an
// already-watched category is a no-op.
func (cs *CounterSet) Watch(categoryID int64) {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return
	}
	if _, ok := cs.cancels[categoryID]; ok {
		cs.mu.Unlock()
		return
	}
	events, cancel := cs.bus.Subscribe(16)
	cs.cancels[categoryID] = cancel
	cs.mu.Unlock()

	cs.recount(categoryID)

	go func() {
		for ev := range events {
			if ev.Collection != CollItems && ev.Collection != CollTasks {
				continue
			}
			if ev.HouseholdID != cs.householdID || ev.CategoryID != categoryID {
				continue
			}
			cs.recount(categoryID)
		}
	}()
}

func (cs *CounterSet) recount(categoryID int64) {
	open, urgent, err := cs.counter.CountTodo(categoryID)
	if err != nil {
		cs.logger.Error("recount failed", "category_id", categoryID, "error", err)
		return
	}
	if open < 0 {
		open = 0
	}
	if urgent < 0 {
		urgent = 0
	}
	cs.mu.Lock()
	if !cs.closed {
		cs.counts[categoryID] = Counts{CategoryID: categoryID, Open: open, Urgent: urgent}
	}
	cs.mu.Unlock()
}

// Counts returns the current tally for a category. Unwatched categories
// report zero.
func (cs *CounterSet) Counts(categoryID int64) Counts {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.counts[categoryID]
	if !ok {
		return Counts{CategoryID: categoryID}
	}
	return c
}

// Summary rolls every watched category into a single household total.
func (cs *CounterSet) Summary() Summary {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var s Summary
	for _, c := range cs.counts {
		s.Open += c.Open
		s.Urgent += c.Urgent
	}
	return s
}

// Watched reports how many categories the set is tracking.
func (cs *CounterSet) Watched() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.cancels)
}

// Close cancels every watcher. The set is empty afterwards and further
// Watch calls are ignored.
func (cs *CounterSet) Close() {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return
	}
	cs.closed = true
	cancels := cs.cancels
	cs.cancels = make(map[int64]func())
	cs.counts = make(map[int64]Counts)
	cs.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
