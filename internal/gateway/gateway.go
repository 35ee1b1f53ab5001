package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/engine/internal/channel"
	"github.com/quizlive/engine/internal/events"
)

// Gateway bridges the session event channel and WebSocket connections. It
// subscribes to a session's events while at least one connection for that
// session is open, fanning inbound client frames back onto the channel.
type Gateway struct {
	cm      *ConnectionManager
	channel channel.Channel

	mu    sync.Mutex
	feeds map[uuid.UUID]*feed
}

type feed struct {
	sub    channel.Subscription
	cancel context.CancelFunc
}

// NewGateway creates a gateway wired to the given channel.
func NewGateway(ch channel.Channel, config ConnectionConfig) *Gateway {
	g := &Gateway{
		cm:      NewConnectionManager(config),
		channel: ch,
		feeds:   make(map[uuid.UUID]*feed),
	}
	g.cm.onMessage = g.handleClientFrame
	g.cm.onFirstConn = g.openFeed
	g.cm.onLastConn = g.closeFeed
	return g
}

// Start runs the broadcast loop until ctx is cancelled.
func (g *Gateway) Start(ctx context.Context) {
	g.cm.Start(ctx)
}

// Connect upgrades an HTTP request to a WebSocket connection for a session.
func (g *Gateway) Connect(w http.ResponseWriter, r *http.Request, participantID, sessionID uuid.UUID, isHost bool) error {
	return g.cm.UpgradeConnection(w, r, participantID, sessionID, isHost)
}

// ConnectionStats reports active connection counts.
func (g *Gateway) ConnectionStats() (int, map[string]int) {
	return g.cm.ConnectionStats()
}

func (g *Gateway) openFeed(sessionID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.feeds[sessionID]; exists {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := g.channel.Subscribe(ctx, sessionID)
	if err != nil {
		cancel()
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to subscribe to session events")
		return
	}

	g.feeds[sessionID] = &feed{sub: sub, cancel: cancel}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				g.cm.BroadcastToSession(sessionID, event)
			}
		}
	}()

	log.Info().Str("session_id", sessionID.String()).Msg("session feed opened")
}

func (g *Gateway) closeFeed(sessionID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, exists := g.feeds[sessionID]
	if !exists {
		return
	}
	delete(g.feeds, sessionID)

	f.cancel()
	if err := f.sub.Unsubscribe(); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to unsubscribe session feed")
	}

	log.Info().Str("session_id", sessionID.String()).Msg("session feed closed")
}

// handleClientFrame parses an inbound frame and republishes it on the
// channel. The sender's participant identity is taken from the connection,
// never from the frame payload.
func (g *Gateway) handleClientFrame(conn *Connection, data []byte) {
	var frame events.Event
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", conn.ID).
			Msg("failed to parse client frame")
		return
	}

	var payload any
	switch frame.Type {
	case events.EventTypeBuzzerPress:
		var p events.BuzzerPressPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			log.Warn().Err(err).Str("connection_id", conn.ID).Msg("invalid buzzer-press payload")
			return
		}
		p.ParticipantID = conn.ParticipantID
		payload = p
	case events.EventTypeAnswerSubmit:
		var p events.AnswerSubmitPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			log.Warn().Err(err).Str("connection_id", conn.ID).Msg("invalid answer-submit payload")
			return
		}
		p.ParticipantID = conn.ParticipantID
		payload = p
	case events.EventTypeStateRequest:
		payload = events.StateRequestPayload{ParticipantID: conn.ParticipantID}
	default:
		log.Warn().
			Str("connection_id", conn.ID).
			Str("event_type", string(frame.Type)).
			Msg("rejected client frame of unexpected type")
		return
	}

	if err := g.channel.Publish(context.Background(), conn.SessionID, frame.Type, payload); err != nil {
		log.Error().
			Err(err).
			Str("connection_id", conn.ID).
			Str("event_type", string(frame.Type)).
			Msg("failed to publish client frame")
	}
}
