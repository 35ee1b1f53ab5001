package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Handler returns the gateway's HTTP surface: the WebSocket upgrade endpoint
// and a connection stats endpoint, wrapped in CORS middleware.
func Handler(g *Gateway) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleUpgrade)
	mux.HandleFunc("/stats", g.handleStats)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

// handleUpgrade upgrades GET /ws?session_id=...&participant_id=...&host=1.
func (g *Gateway) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		http.Error(w, "invalid session_id", http.StatusBadRequest)
		return
	}
	participantID, err := uuid.Parse(r.URL.Query().Get("participant_id"))
	if err != nil {
		http.Error(w, "invalid participant_id", http.StatusBadRequest)
		return
	}
	isHost := r.URL.Query().Get("host") == "1"

	if err := g.Connect(w, r, participantID, sessionID, isHost); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Str("participant_id", participantID.String()).
			Msg("failed to establish WebSocket connection")
	}
}

func (g *Gateway) handleStats(w http.ResponseWriter, r *http.Request) {
	total, sessions := g.ConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total_connections": total,
		"sessions":          sessions,
	})
}
