package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/narrative"
	"github.com/yourusername/betting-tracker/internal/service"
)

const (
	transportSSE       = "sse"
	transportWebSocket = "websocket"
)

// Stream event names, shared by both transports.
const (
	eventToken   = "token"
	eventPayload = "payload"
	eventEnd     = "end"
	eventError   = "error"
)

// filterParamsFromQuery reads filters from the query string. List values may
// be repeated or comma-separated.
func filterParamsFromQuery(r *http.Request) analytics.FilterParams {
	q := r.URL.Query()
	return analytics.FilterParams{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Sports:    q["sports"],
		BetTypes:  q["betTypes"],
		Outcomes:  q["outcomes"],
	}
}

func (s *Server) handleAIContext(w http.ResponseWriter, r *http.Request) {
	view, err := s.analysis.Context(r.Context(), claimsFrom(r.Context()).UserID, filterParamsFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleAIFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := s.analysis.Facets(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, facets)
}

// handleAnalyze answers a question as a server-sent event stream: one token
// event per word or whitespace run, then the payload, then end. Every data
// line is JSON so that whitespace tokens survive framing. Failures before the
// first event are ordinary JSON errors.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in service.AnalyzeInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	payload, err := s.analysis.Analyze(r.Context(), claimsFrom(r.Context()).UserID, in, transportSSE)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	done := metrics.StreamStarted(transportSSE)
	defer done()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := &sseWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		stream.flusher = f
	}
	if err := streamPayload(stream, payload); err != nil {
		s.logger.WithError(err).Warn("Analysis stream interrupted")
	}
}

// eventSink receives the events of one answer
type eventSink interface {
	send(event string, data interface{}) error
}

func streamPayload(sink eventSink, payload *narrative.Payload) error {
	for _, token := range narrative.Tokens(payload.Answer) {
		if err := sink.send(eventToken, token); err != nil {
			return err
		}
	}
	if err := sink.send(eventPayload, payload); err != nil {
		return err
	}
	return sink.send(eventEnd, "done")
}

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) send(event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, raw); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
