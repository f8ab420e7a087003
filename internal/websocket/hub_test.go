package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/live"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, householdID int64) *Client {
	return &Client{
		hub:         hub,
		conn:        nil,
		householdID: householdID,
		send:        make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(1, NewMessage("items", "created", 42, 7))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "items_created" {
				t.Errorf("expected type items_created, got %s", got.Type)
			}
			if got.ID != 42 || got.CategoryID != 7 {
				t.Errorf("got id %d category %d", got.ID, got.CategoryID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastScopedToHousehold(t *testing.T) {
	hub := NewHub(slog.Default())

	ours := mockClient(hub, 1)
	theirs := mockClient(hub, 2)
	hub.Register(ours)
	hub.Register(theirs)

	hub.Broadcast(1, NewMessage("items", "created", 1, 1))

	select {
	case <-ours.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("own household did not receive broadcast")
	}
	select {
	case <-theirs.send:
		t.Fatal("broadcast leaked to another household")
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unregister(ours)
	hub.Unregister(theirs)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(1, NewMessage("tasks", "updated", 1, 0))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, NewMessage("items", "updated", int64(i), 0))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(1, NewMessage("items", "updated", 999, 0))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("reminders", "updated", 5, 3)
	if msg.Type != "reminders_updated" {
		t.Errorf("expected type reminders_updated, got %s", msg.Type)
	}
	if msg.Entity != "reminders" || msg.Action != "updated" {
		t.Errorf("entity/action = %s/%s", msg.Entity, msg.Action)
	}
	if msg.ID != 5 || msg.CategoryID != 3 {
		t.Errorf("id/category = %d/%d", msg.ID, msg.CategoryID)
	}
}

func TestRelayForwardsBusEvents(t *testing.T) {
	logger := slog.Default()
	hub := NewHub(logger)
	bus := live.NewBus(logger)

	c := mockClient(hub, 1)
	hub.Register(c)
	cancel := Relay(bus, hub)
	defer cancel()

	bus.Publish(live.Event{
		Collection:  live.CollItems,
		HouseholdID: 1,
		CategoryID:  4,
		ID:          9,
		Action:      live.ActionCreated,
	})

	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "items_created" || got.CategoryID != 4 {
			t.Fatalf("relayed message = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("bus event never reached the hub")
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, 1)
			hub.Register(c)
			hub.Broadcast(1, NewMessage("items", "updated", 0, 0))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
