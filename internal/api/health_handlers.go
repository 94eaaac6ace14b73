package api

import (
	"net/http"

	"github.com/ezemirmul/estimator/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns a readiness probe - 200 when the question store
// responds to a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.Health.Ping(r.Context()); err != nil {
		log.Warn("readiness check failed - store: %v", err)
		respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
