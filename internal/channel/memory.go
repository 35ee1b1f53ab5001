package channel

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/engine/internal/events"
)

// MemoryChannel is an in-process Channel for tests and single-process
// deployments. It keeps the transport contract: no persistence, per-sender
// ordering, and drop-on-full for slow subscribers.
type MemoryChannel struct {
	mu         sync.RWMutex
	subs       map[uuid.UUID]map[*memorySubscription]struct{}
	bufferSize int
}

// NewMemoryChannel returns an empty in-memory session channel.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{
		subs:       make(map[uuid.UUID]map[*memorySubscription]struct{}),
		bufferSize: 64,
	}
}

// Publish delivers an event to all current subscribers of the session.
func (c *MemoryChannel) Publish(ctx context.Context, sessionID uuid.UUID, eventType events.EventType, payload any) error {
	event, err := events.New(sessionID, eventType, payload)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for sub := range c.subs[sessionID] {
		select {
		case sub.events <- event:
		default:
			log.Warn().
				Str("session_id", sessionID.String()).
				Str("event_type", string(eventType)).
				Msg("subscriber buffer full, dropping event")
		}
	}
	return nil
}

// Subscribe registers a new subscriber; it receives nothing sent before now.
func (c *MemoryChannel) Subscribe(ctx context.Context, sessionID uuid.UUID) (Subscription, error) {
	sub := &memorySubscription{
		channel:   c,
		sessionID: sessionID,
		events:    make(chan events.Event, c.bufferSize),
	}

	c.mu.Lock()
	if c.subs[sessionID] == nil {
		c.subs[sessionID] = make(map[*memorySubscription]struct{})
	}
	c.subs[sessionID][sub] = struct{}{}
	c.mu.Unlock()

	return sub, nil
}

func (c *MemoryChannel) remove(sub *memorySubscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if subs, ok := c.subs[sub.sessionID]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.events)
			if len(subs) == 0 {
				delete(c.subs, sub.sessionID)
			}
		}
	}
}

type memorySubscription struct {
	channel   *MemoryChannel
	sessionID uuid.UUID
	events    chan events.Event
}

func (s *memorySubscription) Events() <-chan events.Event {
	return s.events
}

func (s *memorySubscription) Unsubscribe() error {
	s.channel.remove(s)
	return nil
}
