package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quizlive/engine/internal/models"
)

type fakeStore struct {
	mu           sync.Mutex
	participants []models.Participant
	calls        int
}

func (s *fakeStore) ListActiveParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	out := make([]models.Participant, len(s.participants))
	copy(out, s.participants)
	return out, nil
}

func (s *fakeStore) set(participants ...models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = participants
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func participant(sessionID uuid.UUID, nickname string, joinedAt time.Time) models.Participant {
	return models.Participant{
		ID:        uuid.New(),
		SessionID: sessionID,
		Nickname:  nickname,
		JoinedAt:  joinedAt,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Keep the fallback and ping tickers out of the way.
	cfg.FallbackInterval = time.Hour
	cfg.PingInterval = time.Hour
	return cfg
}

func waitSnapshot(t *testing.T, updates <-chan []models.Participant) []models.Participant {
	t.Helper()

	select {
	case snapshot := <-updates:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for roster update")
		return nil
	}
}

func TestTrackerRefreshesOnNotification(t *testing.T) {
	sessionID := uuid.New()
	now := time.Now()
	st := &fakeStore{}
	st.set(participant(sessionID, "alice", now))

	tracker := newTracker(st, sessionID, testConfig())
	sub := tracker.Subscribe()
	defer sub.Cancel()
	updates := sub.Updates()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notify := make(chan *pq.Notification, 4)
	go tracker.run(ctx, notify, nil)

	// Initial load happens before any notification.
	if snapshot := waitSnapshot(t, updates); len(snapshot) != 1 || snapshot[0].Nickname != "alice" {
		t.Fatalf("initial roster = %+v, want [alice]", snapshot)
	}

	st.set(
		participant(sessionID, "alice", now),
		participant(sessionID, "bob", now.Add(time.Second)),
	)
	notify <- &pq.Notification{Channel: "participants_changed", Extra: sessionID.String()}

	snapshot := waitSnapshot(t, updates)
	if len(snapshot) != 2 {
		t.Fatalf("roster has %d entries, want 2", len(snapshot))
	}
	if snapshot[0].Nickname != "alice" || snapshot[1].Nickname != "bob" {
		t.Fatalf("roster order = [%s %s], want join order [alice bob]", snapshot[0].Nickname, snapshot[1].Nickname)
	}
}

func TestTrackerIgnoresOtherSessions(t *testing.T) {
	sessionID := uuid.New()
	st := &fakeStore{}
	st.set(participant(sessionID, "alice", time.Now()))

	tracker := newTracker(st, sessionID, testConfig())
	sub := tracker.Subscribe()
	defer sub.Cancel()
	updates := sub.Updates()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notify := make(chan *pq.Notification, 4)
	go tracker.run(ctx, notify, nil)

	waitSnapshot(t, updates)
	after := st.callCount()

	notify <- &pq.Notification{Channel: "participants_changed", Extra: uuid.New().String()}

	select {
	case <-updates:
		t.Fatal("received roster update for another session's change")
	case <-time.After(100 * time.Millisecond):
	}
	if got := st.callCount(); got != after {
		t.Fatalf("store read %d times after foreign notification, want %d", got, after)
	}
}

func TestTrackerRefreshesAfterReconnect(t *testing.T) {
	sessionID := uuid.New()
	st := &fakeStore{}
	st.set(participant(sessionID, "alice", time.Now()))

	tracker := newTracker(st, sessionID, testConfig())
	sub := tracker.Subscribe()
	defer sub.Cancel()
	updates := sub.Updates()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notify := make(chan *pq.Notification, 4)
	go tracker.run(ctx, notify, nil)

	waitSnapshot(t, updates)

	// pq delivers nil after a dropped and re-established connection; anything
	// could have been missed in between.
	notify <- nil
	waitSnapshot(t, updates)
}

func TestTrackerCancelledSubscriptionStopsReceiving(t *testing.T) {
	sessionID := uuid.New()
	st := &fakeStore{}
	st.set(participant(sessionID, "alice", time.Now()))

	tracker := newTracker(st, sessionID, testConfig())
	kept := tracker.Subscribe()
	defer kept.Cancel()
	cancelled := tracker.Subscribe()

	if err := tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	waitSnapshot(t, kept.Updates())
	waitSnapshot(t, cancelled.Updates())

	cancelled.Cancel()
	if _, ok := <-cancelled.Updates(); ok {
		t.Fatal("updates channel still open after cancel")
	}

	// Later refreshes only reach the surviving subscription.
	if err := tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh after cancel: %v", err)
	}
	waitSnapshot(t, kept.Updates())

	// Cancel is idempotent.
	cancelled.Cancel()
}

func TestTrackerRosterJoinOrder(t *testing.T) {
	sessionID := uuid.New()
	now := time.Now()
	st := &fakeStore{}
	st.set(
		participant(sessionID, "late", now.Add(time.Minute)),
		participant(sessionID, "early", now),
	)

	tracker := newTracker(st, sessionID, testConfig())
	if err := tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	roster := tracker.Roster()
	if len(roster) != 2 || roster[0].Nickname != "early" || roster[1].Nickname != "late" {
		t.Fatalf("roster = %+v, want join order [early late]", roster)
	}
}
