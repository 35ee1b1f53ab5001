package presence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/engine/internal/models"
)

// Store defines what the tracker needs from the durable store.
type Store interface {
	ListActiveParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
}

// Config holds settings for the Postgres LISTEN/NOTIFY roster feed.
type Config struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // channel fired by participant row triggers
	FallbackInterval time.Duration // how often to re-poll for missed notifications
	PingInterval     time.Duration
}

// DefaultConfig returns default presence tracker configuration.
func DefaultConfig() Config {
	return Config{
		NotifyChannel:    "participants_changed",
		FallbackInterval: 30 * time.Second,
		PingInterval:     90 * time.Second,
	}
}

// Tracker maintains the live participant roster for one session by combining
// durable-store reads with change notifications. Notification payloads carry
// the session id whose roster changed.
type Tracker struct {
	store     Store
	sessionID uuid.UUID
	listener  *pq.Listener
	cfg       Config

	mu     sync.RWMutex
	roster map[uuid.UUID]models.Participant
	subs   map[chan []models.Participant]struct{}
}

// NewTracker opens a LISTEN connection and returns a tracker. Call Start to
// begin following changes.
func NewTracker(store Store, sessionID uuid.UUID, cfg Config) (*Tracker, error) {
	listener := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("presence listener event")
			}
		},
	)
	if err := listener.Listen(cfg.NotifyChannel); err != nil {
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	t := newTracker(store, sessionID, cfg)
	t.listener = listener
	return t, nil
}

func newTracker(store Store, sessionID uuid.UUID, cfg Config) *Tracker {
	return &Tracker{
		store:     store,
		sessionID: sessionID,
		cfg:       cfg,
		roster:    make(map[uuid.UUID]models.Participant),
		subs:      make(map[chan []models.Participant]struct{}),
	}
}

// Start follows roster changes until the context is cancelled.
func (t *Tracker) Start(ctx context.Context) error {
	log.Info().
		Str("session_id", t.sessionID.String()).
		Str("channel", t.cfg.NotifyChannel).
		Msg("presence tracker started")
	defer t.Stop()
	return t.run(ctx, t.listener.Notify, t.listener.Ping)
}

// run is the tracker loop, separated from the pq plumbing so tests can feed
// notifications directly.
func (t *Tracker) run(ctx context.Context, notify <-chan *pq.Notification, ping func() error) error {
	if err := t.Refresh(ctx); err != nil {
		log.Error().Err(err).Str("session_id", t.sessionID.String()).Msg("initial roster load failed")
	}

	fallbackTicker := time.NewTicker(t.cfg.FallbackInterval)
	pingTicker := time.NewTicker(t.cfg.PingInterval)
	defer fallbackTicker.Stop()
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("session_id", t.sessionID.String()).Msg("presence tracker shutting down")
			return nil
		case note := <-notify:
			if note == nil {
				// Connection was lost and re-established; re-read to be safe.
				if err := t.Refresh(ctx); err != nil {
					log.Error().Err(err).Msg("roster refresh after reconnect failed")
				}
				continue
			}
			if note.Extra != t.sessionID.String() {
				continue
			}
			if err := t.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("roster refresh failed")
			}
		case <-fallbackTicker.C:
			if err := t.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("fallback roster refresh failed")
			}
		case <-pingTicker.C:
			if ping != nil {
				if err := ping(); err != nil {
					log.Error().Err(err).Msg("failed to ping presence listener")
				}
			}
		}
	}
}

// Refresh re-reads the roster from the store and notifies subscribers.
func (t *Tracker) Refresh(ctx context.Context) error {
	participants, err := t.store.ListActiveParticipants(ctx, t.sessionID)
	if err != nil {
		return fmt.Errorf("failed to refresh roster: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.roster = make(map[uuid.UUID]models.Participant, len(participants))
	for _, p := range participants {
		t.roster[p.ID] = p
	}
	snapshot := t.snapshotLocked()
	// Sends stay under the lock so a concurrent Cancel can never close a
	// channel mid-send; the default case keeps them from blocking.
	for sub := range t.subs {
		select {
		case sub <- snapshot:
		default:
			log.Warn().Str("session_id", t.sessionID.String()).Msg("roster subscriber slow, dropping update")
		}
	}
	return nil
}

// Roster returns the current non-blocked roster in join order.
func (t *Tracker) Roster() []models.Participant {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() []models.Participant {
	snapshot := make([]models.Participant, 0, len(t.roster))
	for _, p := range t.roster {
		snapshot = append(snapshot, p)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].JoinedAt.Before(snapshot[j].JoinedAt)
	})
	return snapshot
}

// RosterSubscription is one registered roster feed. Cancel detaches it from
// the tracker and closes the updates channel.
type RosterSubscription struct {
	tracker *Tracker
	updates chan []models.Participant
}

// Updates returns the channel receiving roster snapshots on every change.
func (s *RosterSubscription) Updates() <-chan []models.Participant {
	return s.updates
}

// Cancel detaches the subscription. Safe to call more than once.
func (s *RosterSubscription) Cancel() {
	s.tracker.mu.Lock()
	defer s.tracker.mu.Unlock()
	if _, ok := s.tracker.subs[s.updates]; !ok {
		return
	}
	delete(s.tracker.subs, s.updates)
	close(s.updates)
}

// Subscribe registers a roster feed. Callers must Cancel it when done, or
// the tracker keeps delivering to the channel for its whole lifetime.
func (t *Tracker) Subscribe() *RosterSubscription {
	ch := make(chan []models.Participant, 1)
	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()
	return &RosterSubscription{tracker: t, updates: ch}
}

// Stop closes the LISTEN connection.
func (t *Tracker) Stop() error {
	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}
