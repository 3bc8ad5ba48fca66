package api

import (
	"net/http"

	"github.com/yourusername/betting-tracker/internal/service"
)

// handleDemoSummary summarizes caller-supplied bets without a session.
// Nothing is stored.
func (s *Server) handleDemoSummary(w http.ResponseWriter, r *http.Request) {
	var in service.DemoInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	summary, err := s.analysis.Demo(in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
