// Package api exposes a small local HTTP surface over the mutation queue
// for the UI and for diagnostics.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/danielsv/farmaq/internal/outbox"
)

// Server wires the queue into an HTTP handler.
//
//	GET    /health       liveness
//	GET    /queue        believed connectivity + pending intents
//	POST   /queue/drain  run a drain pass now
//	DELETE /queue        discard all pending intents (destructive)
type Server struct {
	queue *outbox.Queue
	log   zerolog.Logger
}

// NewServer creates the HTTP surface over queue.
func NewServer(queue *outbox.Queue, log zerolog.Logger) *Server {
	return &Server{queue: queue, log: log}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/queue", s.handleQueueStatus)
	r.Post("/queue/drain", s.handleDrain)
	r.Delete("/queue", s.handleClear)

	return r
}

// queueStatus is the GET /queue response body.
type queueStatus struct {
	Online  bool            `json:"online"`
	Pending int             `json:"pending"`
	Intents []outbox.Intent `json:"intents"`
}

// drainResponse is the POST /queue/drain response body.
type drainResponse struct {
	Attempted int `json:"attempted"`
	Applied   int `json:"applied"`
	Retained  int `json:"retained"`
}

// clearResponse is the DELETE /queue response body.
type clearResponse struct {
	Discarded int `json:"discarded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	intents := s.queue.Pending()
	writeJSON(w, http.StatusOK, queueStatus{
		Online:  s.queue.Online(),
		Pending: len(intents),
		Intents: intents,
	})
}

func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	stats := s.queue.Drain(r.Context())
	s.log.Info().Int("applied", stats.Applied).Int("retained", stats.Retained).Msg("drain requested over http")
	writeJSON(w, http.StatusOK, drainResponse{
		Attempted: stats.Attempted,
		Applied:   stats.Applied,
		Retained:  stats.Retained,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	discarded := s.queue.Clear(r.Context())
	s.log.Warn().Int("discarded", discarded).Msg("queue cleared over http")
	writeJSON(w, http.StatusOK, clearResponse{Discarded: discarded})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
