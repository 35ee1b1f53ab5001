package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies one message kind on the session channel. The vocabulary
// is closed: unknown types are rejected at the boundary.
type EventType string

// Host-broadcast events.
const (
	EventTypeGameState         EventType = "game-state"
	EventTypeBuzzerOpen        EventType = "buzzer-open"
	EventTypeBuzzerClosed      EventType = "buzzer-closed"
	EventTypeActiveParticipant EventType = "active-participant"
	EventTypeTimerStart        EventType = "timer-start"
	EventTypeTimerPause        EventType = "timer-pause"
	EventTypeTimerTick         EventType = "timer-tick"
	EventTypeScoreUpdate       EventType = "score-update"
	EventTypeNextQuestion      EventType = "next-question"
	EventTypeSessionEnded      EventType = "session-ended"
)

// Participant-originated events.
const (
	EventTypeBuzzerPress  EventType = "buzzer-press"
	EventTypeAnswerSubmit EventType = "answer-submit"
	EventTypeStateRequest EventType = "state-request"
)

// Event is the envelope every session channel message travels in.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New builds an envelope around a marshaled payload.
func New(sessionID uuid.UUID, eventType EventType, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}

// ParsePayload decodes the envelope payload into its typed struct. Unknown
// event types are an error so malformed or foreign messages die at the edge.
func ParsePayload(event Event) (any, error) {
	switch event.Type {
	case EventTypeGameState:
		return decode[GameStatePayload](event)
	case EventTypeBuzzerOpen:
		return decode[BuzzerOpenPayload](event)
	case EventTypeBuzzerClosed:
		return decode[BuzzerClosedPayload](event)
	case EventTypeBuzzerPress:
		return decode[BuzzerPressPayload](event)
	case EventTypeActiveParticipant:
		return decode[ActiveParticipantPayload](event)
	case EventTypeTimerStart, EventTypeTimerPause, EventTypeTimerTick:
		return decode[TimerPayload](event)
	case EventTypeScoreUpdate:
		return decode[ScoreUpdatePayload](event)
	case EventTypeNextQuestion:
		return decode[NextQuestionPayload](event)
	case EventTypeSessionEnded:
		return decode[SessionEndedPayload](event)
	case EventTypeAnswerSubmit:
		return decode[AnswerSubmitPayload](event)
	case EventTypeStateRequest:
		return decode[StateRequestPayload](event)
	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}
}

func decode[T any](event Event) (T, error) {
	var payload T
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
	}
	return payload, nil
}
