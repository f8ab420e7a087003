package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hearth-app/hearth/internal/model"
	"github.com/hearth-app/hearth/internal/store"
)

// Sender delivers one notification. Satisfied by *Service; tests swap in
// a recorder.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Scheduler polls for due reminders once a minute and notifies every
// subscription in the reminder's household. Expired subscriptions are
// pruned on the spot.
type Scheduler struct {
	mu        sync.RWMutex
	sender    Sender
	push      *store.PushStore
	reminders *store.ReminderStore
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a due-reminder scheduler.
func NewScheduler(sender Sender, pushStore *store.PushStore, reminderStore *store.ReminderStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sender:    sender,
		push:      pushStore,
		reminders: reminderStore,
		logger:    logger.With("component", "push_scheduler"),
		interval:  60 * time.Second,
		now:       time.Now,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick delivers every due, not-yet-notified reminder. Exported so the
// manual trigger endpoint and tests can run one pass directly.
func (s *Scheduler) Tick() {
	due, err := s.reminders.DueUnnotified(s.now().UTC())
	if err != nil {
		s.logger.Error("list due reminders", "error", err)
		return
	}

	for _, rem := range due {
		s.notify(rem)
		if err := s.reminders.MarkNotified(rem.ID); err != nil {
			s.logger.Error("mark reminder notified", "reminder_id", rem.ID, "error", err)
		}
	}
}

func (s *Scheduler) notify(rem model.Reminder) {
	subs, err := s.push.ListByHousehold(rem.HouseholdID)
	if err != nil {
		s.logger.Error("list subscriptions", "household_id", rem.HouseholdID, "error", err)
		return
	}

	body := rem.Body
	if body == "" {
		body = "Reminder is due"
	}
	payload := Payload{
		Title: rem.Title,
		Body:  body,
		URL:   "/reminders",
		Tag:   fmt.Sprintf("reminder-%d", rem.ID),
	}

	for _, sub := range subs {
		if err := s.sender.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					s.logger.Error("prune expired subscription", "error", err)
				}
				continue
			}
			s.logger.Error("send reminder push", "reminder_id", rem.ID, "error", err)
		}
	}
}
