package live

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

type fakeCategories struct {
	mu   sync.Mutex
	cats []model.Category
	err  error
}

func (f *fakeCategories) set(cats ...model.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cats = cats
}

func (f *fakeCategories) ListByKind(householdID int64, kind model.CollectionKind) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Category(nil), f.cats...), nil
}

// fakeCounter reports fixed per-category tallies.
type fakeCounter struct {
	mu     sync.Mutex
	open   map[int64]int
	urgent map[int64]int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{open: make(map[int64]int), urgent: make(map[int64]int)}
}

func (f *fakeCounter) set(categoryID int64, open, urgent int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open[categoryID] = open
	f.urgent[categoryID] = urgent
}

func (f *fakeCounter) CountTodo(categoryID int64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open[categoryID], f.urgent[categoryID], nil
}

func cat(id int64, name string) model.Category {
	return model.Category{ID: id, HouseholdID: 1, Kind: model.KindShopping, Label: name}
}

func waitCategories(t *testing.T, ch <-chan []model.Category) []model.Category {
	t.Helper()
	select {
	case cats, ok := <-ch:
		if !ok {
			t.Fatal("category channel closed")
		}
		return cats
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for category list")
	}
	return nil
}

func TestCategoryFeedStartPrimesListAndCounters(t *testing.T) {
	src := &fakeCategories{}
	src.set(cat(1, "Groceries"), cat(2, "Hardware"))
	counter := newFakeCounter()
	counter.set(1, 3, 1)
	counter.set(2, 2, 0)

	bus := NewBus(testLogger())
	feed := NewCategoryFeed(bus, src, counter, testLogger(), 1, model.KindShopping)
	defer feed.Close()

	if err := feed.Start(); err != nil {
		t.Fatal(err)
	}

	cats := waitCategories(t, feed.Updates())
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2", len(cats))
	}
	if c := feed.Counts(1); c.Open != 3 || c.Urgent != 1 {
		t.Fatalf("counts for category 1 = %+v", c)
	}
	if s := feed.Summary(); s.Open != 5 || s.Urgent != 1 {
		t.Fatalf("summary = %+v, want open 5 urgent 1", s)
	}
}

func TestCategoryFeedRefreshKeepsLastGoodOnError(t *testing.T) {
	src := &fakeCategories{}
	src.set(cat(1, "Groceries"))
	counter := newFakeCounter()

	bus := NewBus(testLogger())
	feed := NewCategoryFeed(bus, src, counter, testLogger(), 1, model.KindShopping)
	defer feed.Close()

	if err := feed.Start(); err != nil {
		t.Fatal(err)
	}
	_ = waitCategories(t, feed.Updates())

	src.mu.Lock()
	src.err = errors.New("store down")
	src.mu.Unlock()
	bus.Publish(Event{Collection: CollCategories, Kind: model.KindShopping, HouseholdID: 1, Action: ActionUpdated})

	// The failed refresh must not wipe the list.
	deadline := time.After(time.Second)
	for {
		if got := feed.Categories(); len(got) == 1 && got[0].Label == "Groceries" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("last known good list was lost after a failed refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCategoryFeedRebuildsCountersOnSetChange(t *testing.T) {
	src := &fakeCategories{}
	src.set(cat(1, "Groceries"))
	counter := newFakeCounter()
	counter.set(1, 2, 0)
	counter.set(2, 4, 2)

	bus := NewBus(testLogger())
	feed := NewCategoryFeed(bus, src, counter, testLogger(), 1, model.KindShopping)
	defer feed.Close()

	if err := feed.Start(); err != nil {
		t.Fatal(err)
	}
	_ = waitCategories(t, feed.Updates())

	src.set(cat(1, "Groceries"), cat(2, "Hardware"))
	bus.Publish(Event{Collection: CollCategories, Kind: model.KindShopping, HouseholdID: 1, Action: ActionCreated})
	_ = waitCategories(t, feed.Updates())

	deadline := time.After(time.Second)
	for {
		if s := feed.Summary(); s.Open == 6 && s.Urgent == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("summary = %+v, want open 6 urgent 2 after rebuild", feed.Summary())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCategoryFeedIgnoresOtherKinds(t *testing.T) {
	src := &fakeCategories{}
	src.set(cat(1, "Groceries"))
	counter := newFakeCounter()

	bus := NewBus(testLogger())
	feed := NewCategoryFeed(bus, src, counter, testLogger(), 1, model.KindShopping)
	defer feed.Close()

	if err := feed.Start(); err != nil {
		t.Fatal(err)
	}
	_ = waitCategories(t, feed.Updates())

	bus.Publish(Event{Collection: CollCategories, Kind: model.KindTasks, HouseholdID: 1, Action: ActionCreated})

	select {
	case cats := <-feed.Updates():
		t.Fatalf("tasks event triggered a shopping refresh: %+v", cats)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCounterSetRecountsOnItemEvent(t *testing.T) {
	counter := newFakeCounter()
	counter.set(1, 1, 0)
	bus := NewBus(testLogger())
	cs := NewCounterSet(bus, counter, testLogger(), 1)
	defer cs.Close()

	cs.Watch(1)
	cs.Watch(1) // idempotent
	if got := cs.Watched(); got != 1 {
		t.Fatalf("watched = %d, want 1", got)
	}
	if c := cs.Counts(1); c.Open != 1 {
		t.Fatalf("primed count = %+v", c)
	}

	counter.set(1, 5, 2)
	bus.Publish(Event{Collection: CollItems, HouseholdID: 1, CategoryID: 1, Action: ActionUpdated})

	deadline := time.After(time.Second)
	for {
		if c := cs.Counts(1); c.Open == 5 && c.Urgent == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("counts = %+v, want open 5 urgent 2", cs.Counts(1))
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCounterSetCloseReleasesWatchers(t *testing.T) {
	counter := newFakeCounter()
	bus := NewBus(testLogger())
	cs := NewCounterSet(bus, counter, testLogger(), 1)

	cs.Watch(1)
	cs.Watch(2)
	cs.Close()
	cs.Close() // idempotent

	if got := bus.SubscriberCount(); got != 0 {
		t.Fatalf("%d subscriptions leaked after close", got)
	}
	if got := cs.Watched(); got != 0 {
		t.Fatalf("watched = %d after close, want 0", got)
	}
	if c := cs.Counts(1); c.Open != 0 || c.Urgent != 0 {
		t.Fatalf("counts after close = %+v, want zero", c)
	}
}
