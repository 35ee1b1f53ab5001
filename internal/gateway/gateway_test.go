package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/channel"
	"github.com/quizlive/engine/internal/events"
)

func clientFrame(t *testing.T, eventType events.EventType, payload any) []byte {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	frame, err := json.Marshal(events.Event{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Type:      eventType,
		Payload:   data,
	})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return frame
}

func TestClientFrameIdentityComesFromConnection(t *testing.T) {
	ch := channel.NewMemoryChannel()
	g := NewGateway(ch, DefaultConnectionConfig())

	sessionID := uuid.New()
	connected := uuid.New()
	sub, err := ch.Subscribe(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	conn := &Connection{ID: "test", ParticipantID: connected, SessionID: sessionID}

	// The frame claims someone else's identity; the connection's wins.
	g.handleClientFrame(conn, clientFrame(t, events.EventTypeBuzzerPress, events.BuzzerPressPayload{
		ParticipantID: uuid.New(),
		QuestionIndex: 0,
		PressedAt:     time.Now(),
	}))

	select {
	case event := <-sub.Events():
		payload, err := events.ParsePayload(event)
		if err != nil {
			t.Fatalf("parse payload: %v", err)
		}
		press := payload.(events.BuzzerPressPayload)
		if press.ParticipantID != connected {
			t.Fatalf("published participant = %s, want %s", press.ParticipantID, connected)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published frame")
	}
}

func TestClientFrameRejectsHostOnlyTypes(t *testing.T) {
	ch := channel.NewMemoryChannel()
	g := NewGateway(ch, DefaultConnectionConfig())

	sessionID := uuid.New()
	sub, err := ch.Subscribe(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	conn := &Connection{ID: "test", ParticipantID: uuid.New(), SessionID: sessionID}

	// A client must not be able to forge host broadcasts or garbage.
	g.handleClientFrame(conn, clientFrame(t, events.EventTypeSessionEnded, events.SessionEndedPayload{EndedAt: time.Now()}))
	g.handleClientFrame(conn, []byte("not json"))

	select {
	case event := <-sub.Events():
		t.Fatalf("forged %s frame was published", event.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpgradeRejectsBadIDs(t *testing.T) {
	g := NewGateway(channel.NewMemoryChannel(), DefaultConnectionConfig())
	server := httptest.NewServer(Handler(g))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?session_id=nope&participant_id=" + uuid.New().String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestStatsEndpoint(t *testing.T) {
	g := NewGateway(channel.NewMemoryChannel(), DefaultConnectionConfig())
	server := httptest.NewServer(Handler(g))
	defer server.Close()

	resp, err := http.Get(server.URL + "/stats")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var stats struct {
		TotalConnections int            `json:"total_connections"`
		Sessions         map[string]int `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalConnections != 0 {
		t.Fatalf("total connections = %d, want 0", stats.TotalConnections)
	}
}
