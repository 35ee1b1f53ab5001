package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/engine/internal/events"
)

// NATSConfig holds connection settings for the NATS-backed channel.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "session.events"
	MaxReconnects int
	ReconnectWait time.Duration
	BufferSize    int // per-subscription pending event buffer
}

// DefaultNATSConfig returns default NATS channel configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "session.events",
		MaxReconnects: -1, // infinite
		ReconnectWait: 2 * time.Second,
		BufferSize:    256,
	}
}

// NATSChannel implements Channel over core NATS subjects, one subject per
// session. Core (non-JetStream) delivery matches the contract: at-most-once,
// no retroactive delivery for late subscribers.
type NATSChannel struct {
	nc     *nats.Conn
	config NATSConfig
}

// NewNATSChannel connects to NATS and returns a session channel.
func NewNATSChannel(config NATSConfig) (*NATSChannel, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSChannel{nc: nc, config: config}, nil
}

func (c *NATSChannel) subject(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", c.config.SubjectPrefix, sessionID)
}

// Publish fires an event to all current subscribers of the session.
func (c *NATSChannel) Publish(ctx context.Context, sessionID uuid.UUID, eventType events.EventType, payload any) error {
	event, err := events.New(sessionID, eventType, payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := c.nc.Publish(c.subject(sessionID), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Subscribe registers for the session's events from this point on.
func (c *NATSChannel) Subscribe(ctx context.Context, sessionID uuid.UUID) (Subscription, error) {
	s := &natsSubscription{
		sessionID: sessionID,
		events:    make(chan events.Event, c.config.BufferSize),
	}

	sub, err := c.nc.Subscribe(c.subject(sessionID), func(msg *nats.Msg) {
		var event events.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed event")
			return
		}
		s.deliver(event)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to session %s: %w", sessionID, err)
	}

	s.sub = sub
	return s, nil
}

// Close shuts down the underlying NATS connection.
func (c *NATSChannel) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

type natsSubscription struct {
	sub       *nats.Subscription
	sessionID uuid.UUID

	// mu excludes deliver and Unsubscribe from each other: a message callback
	// still in flight after Unsubscribe returns must never send on the closed
	// channel.
	mu     sync.Mutex
	closed bool
	events chan events.Event
}

func (s *natsSubscription) deliver(event events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
		log.Warn().
			Str("session_id", s.sessionID.String()).
			Str("event_type", string(event.Type)).
			Msg("subscriber buffer full, dropping event")
	}
}

func (s *natsSubscription) Events() <-chan events.Event {
	return s.events
}

func (s *natsSubscription) Unsubscribe() error {
	var err error
	if s.sub != nil {
		err = s.sub.Unsubscribe()
	}

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}
