package channel

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/events"
)

func timerEvent(t *testing.T, sessionID uuid.UUID, remaining int) events.Event {
	t.Helper()

	event, err := events.New(sessionID, events.EventTypeTimerTick, events.TimerPayload{
		RemainingSec: remaining,
		TotalSec:     30,
		Running:      true,
	})
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	return event
}

func TestNATSSubscriptionDeliver(t *testing.T) {
	sessionID := uuid.New()
	s := &natsSubscription{sessionID: sessionID, events: make(chan events.Event, 1)}

	s.deliver(timerEvent(t, sessionID, 30))

	select {
	case event := <-s.Events():
		if event.Type != events.EventTypeTimerTick {
			t.Fatalf("delivered %s, want %s", event.Type, events.EventTypeTimerTick)
		}
	default:
		t.Fatal("delivered event not buffered")
	}

	// A full buffer drops instead of blocking.
	s.deliver(timerEvent(t, sessionID, 29))
	s.deliver(timerEvent(t, sessionID, 28))
}

func TestNATSSubscriptionDeliverAfterUnsubscribe(t *testing.T) {
	sessionID := uuid.New()
	s := &natsSubscription{sessionID: sessionID, events: make(chan events.Event, 1)}

	if err := s.Unsubscribe(); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if _, ok := <-s.Events(); ok {
		t.Fatal("events channel still open after unsubscribe")
	}

	// A message callback still in flight must be a no-op, not a panic.
	s.deliver(timerEvent(t, sessionID, 30))

	// Unsubscribe is idempotent.
	if err := s.Unsubscribe(); err != nil {
		t.Fatalf("second unsubscribe: %v", err)
	}
}

func TestNATSSubscriptionConcurrentDeliverAndUnsubscribe(t *testing.T) {
	sessionID := uuid.New()
	s := &natsSubscription{sessionID: sessionID, events: make(chan events.Event, 4)}

	event := timerEvent(t, sessionID, 30)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.deliver(event)
		}
	}()

	s.Unsubscribe()
	wg.Wait()
}
