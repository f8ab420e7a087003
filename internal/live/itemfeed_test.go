package live

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

// fakeSource serves canned item lists per category and can hold a
// response until released, to simulate a slow store.
type fakeSource struct {
	mu    sync.Mutex
	items map[int64][]model.Item
	gate  map[int64]chan struct{}
	err   error
	calls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		items: make(map[int64][]model.Item),
		gate:  make(map[int64]chan struct{}),
	}
}

func (s *fakeSource) set(categoryID int64, names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.Item, len(names))
	for i, n := range names {
		items[i] = model.Item{ID: int64(i + 1), CategoryID: categoryID, Name: n, Status: model.StatusTodo}
	}
	s.items[categoryID] = items
}

// hold makes the next query for categoryID block until the returned
// func is called.
func (s *fakeSource) hold(categoryID int64) func() {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gate[categoryID] = ch
	s.mu.Unlock()
	return func() { close(ch) }
}

func (s *fakeSource) ListByCategory(categoryID int64) ([]model.Item, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate[categoryID]
	delete(s.gate, categoryID)
	err := s.err
	items := append([]model.Item(nil), s.items[categoryID]...)
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

type fakePrefs struct {
	mu   sync.Mutex
	vals map[string]string
}

func (p *fakePrefs) Set(householdID, userID int64, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	p.vals[key] = value
	return nil
}

func (p *fakePrefs) get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vals[key]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func waitSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatal("snapshot channel closed")
		}
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestItemFeedSelectDeliversCategoryItems(t *testing.T) {
	src := newFakeSource()
	src.set(1, "milk", "eggs")
	bus := NewBus(testLogger())
	feed := NewItemFeed(src, bus, nil, 1, 1, "shopping.category", testLogger())
	defer feed.Teardown()

	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}

	// First delivery is the cleared list, second is the fetch result.
	first := waitSnapshot(t, feed.Snapshots())
	if len(first.Items) != 0 {
		t.Fatalf("expected cleared list first, got %d items", len(first.Items))
	}
	second := waitSnapshot(t, feed.Snapshots())
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(second.Items))
	}
	for _, it := range second.Items {
		if it.CategoryID != 1 {
			t.Fatalf("item %q from category %d leaked into category 1", it.Name, it.CategoryID)
		}
	}
	if state, cat := feed.State(); state != StateLive || cat != 1 {
		t.Fatalf("state = %v cat = %d, want live/1", state, cat)
	}
}

func TestItemFeedStaleResponseDiscarded(t *testing.T) {
	src := newFakeSource()
	src.set(1, "milk")
	src.set(2, "hammer", "nails")
	bus := NewBus(testLogger())
	feed := NewItemFeed(src, bus, nil, 1, 1, "shopping.category", testLogger())
	defer feed.Teardown()

	// Category 1's fetch stalls; the user switches to 2 meanwhile.
	release := src.hold(1)
	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}
	_ = waitSnapshot(t, feed.Snapshots()) // cleared list for 1

	if err := feed.SelectCategory(2); err != nil {
		t.Fatal(err)
	}
	_ = waitSnapshot(t, feed.Snapshots()) // cleared list for 2

	// Let the slow category-1 response land after the switch.
	release()

	snap := waitSnapshot(t, feed.Snapshots())
	if snap.CategoryID != 2 {
		t.Fatalf("delivered snapshot for category %d after switching to 2", snap.CategoryID)
	}
	for _, it := range snap.Items {
		if it.CategoryID != 2 {
			t.Fatalf("stale item %q from category %d delivered", it.Name, it.CategoryID)
		}
	}

	// Nothing further: the category-1 response must have been dropped.
	select {
	case s, ok := <-feed.Snapshots():
		if ok && s.CategoryID != 2 {
			t.Fatalf("late snapshot for category %d leaked through", s.CategoryID)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestItemFeedReselectIsNoOp(t *testing.T) {
	src := newFakeSource()
	src.set(1, "milk")
	bus := NewBus(testLogger())
	feed := NewItemFeed(src, bus, nil, 1, 1, "shopping.category", testLogger())
	defer feed.Teardown()

	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}
	_ = waitSnapshot(t, feed.Snapshots())
	_ = waitSnapshot(t, feed.Snapshots())
	before := bus.SubscriberCount()

	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}

	if got := bus.SubscriberCount(); got != before {
		t.Fatalf("re-select changed subscriber count: %d -> %d", before, got)
	}
	select {
	case s := <-feed.Snapshots():
		t.Fatalf("re-select produced a delivery: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestItemFeedRequeriesOnChangeEvent(t *testing.T) {
	src := newFakeSource()
	src.set(1, "milk")
	bus := NewBus(testLogger())
	feed := NewItemFeed(src, bus, nil, 1, 1, "shopping.category", testLogger())
	defer feed.Teardown()

	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}
	_ = waitSnapshot(t, feed.Snapshots())
	_ = waitSnapshot(t, feed.Snapshots())

	src.set(1, "milk", "eggs", "butter")
	bus.Publish(Event{Collection: CollItems, HouseholdID: 1, CategoryID: 1, Action: ActionCreated})

	snap := waitSnapshot(t, feed.Snapshots())
	if len(snap.Items) != 3 {
		t.Fatalf("expected re-query to deliver 3 items, got %d", len(snap.Items))
	}
}

func TestItemFeedFetchErrorKeepsSubscription(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("store down")
	bus := NewBus(testLogger())
	feed := NewItemFeed(src, bus, nil, 1, 1, "shopping.category", testLogger())
	defer feed.Teardown()

	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}
	_ = waitSnapshot(t, feed.Snapshots()) // cleared list

	// Store recovers; a change event must still reach the feed.
	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	src.set(1, "milk")
	bus.Publish(Event{Collection: CollItems, HouseholdID: 1, CategoryID: 1, Action: ActionCreated})

	snap := waitSnapshot(t, feed.Snapshots())
	if len(snap.Items) != 1 {
		t.Fatalf("expected recovery delivery with 1 item, got %d", len(snap.Items))
	}
}

func TestItemFeedTeardown(t *testing.T) {
	src := newFakeSource()
	src.set(1, "milk")
	bus := NewBus(testLogger())
	feed := NewItemFeed(src, bus, nil, 1, 1, "shopping.category", testLogger())

	if err := feed.SelectCategory(1); err != nil {
		t.Fatal(err)
	}
	feed.Teardown()
	feed.Teardown() // idempotent

	if err := feed.SelectCategory(2); !errors.Is(err, ErrTornDown) {
		t.Fatalf("SelectCategory after teardown = %v, want ErrTornDown", err)
	}
	if state, _ := feed.State(); state != StateIdle {
		t.Fatalf("state after teardown = %v, want idle", state)
	}
	if got := bus.SubscriberCount(); got != 0 {
		t.Fatalf("%d subscriptions leaked after teardown", got)
	}
}

func TestItemFeedPersistsSelectedCategory(t *testing.T) {
	src := newFakeSource()
	src.set(7, "milk")
	bus := NewBus(testLogger())
	prefs := &fakePrefs{}
	feed := NewItemFeed(src, bus, prefs, 1, 1, "shopping.category", testLogger())
	defer feed.Teardown()

	if err := feed.SelectCategory(7); err != nil {
		t.Fatal(err)
	}
	_ = waitSnapshot(t, feed.Snapshots())
	_ = waitSnapshot(t, feed.Snapshots())

	if got := prefs.get("shopping.category"); got != "7" {
		t.Fatalf("persisted category = %q, want 7", got)
	}
}
