package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/narrative"
	"github.com/yourusername/betting-tracker/internal/service"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed between questions before the connection is dropped
	idleWait = 5 * time.Minute

	// Maximum question size, including history and filters
	maxQuestionSize = 64 << 10
)

// wsMessage is one frame sent to a websocket client
type wsMessage struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Status int         `json:"status,omitempty"`
}

type wsSink struct {
	conn *websocket.Conn
}

func (s wsSink) send(event string, data interface{}) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(wsMessage{Type: event, Data: data})
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and the configured CORS origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// handleAnalyzeWebSocket answers questions over a websocket. Each text frame
// from the client is an analysis request; the reply is a sequence of token
// frames, a payload frame and an end frame, or a single error frame. The
// connection stays open for further questions.
func (s *Server) handleAnalyzeWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	done := metrics.StreamStarted(transportWebSocket)
	defer done()

	owner := claimsFrom(r.Context()).UserID
	sink := wsSink{conn: conn}
	conn.SetReadLimit(maxQuestionSize)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleWait))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.logger.WithError(err).Debug("WebSocket read ended")
			}
			return
		}

		var in service.AnalyzeInput
		var payload *narrative.Payload
		if err = json.Unmarshal(raw, &in); err != nil {
			err = fmt.Errorf("%w: %v", errBadBody, err)
		} else {
			payload, err = s.analysis.Analyze(r.Context(), owner, in, transportWebSocket)
		}
		if err != nil {
			status, body := statusFor(err)
			if status >= http.StatusInternalServerError {
				s.logger.WithError(err).Error("WebSocket analysis failed")
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsMessage{Type: eventError, Error: body.Error, Status: status}); err != nil {
				return
			}
			continue
		}

		if err := streamPayload(sink, payload); err != nil {
			s.logger.WithError(err).Warn("WebSocket stream interrupted")
			return
		}
	}
}
