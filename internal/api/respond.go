package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/auth"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/narrative"
	"github.com/yourusername/betting-tracker/internal/service"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps an error to its HTTP status and client-facing message.
// Unknown errors are internal and their text is not exposed.
func statusFor(err error) (int, ErrorResponse) {
	var authValidation *auth.ValidationError
	var betValidation *service.ValidationError

	switch {
	case errors.As(err, &authValidation):
		return http.StatusBadRequest, ErrorResponse{Error: authValidation.Message}
	case errors.As(err, &betValidation):
		return http.StatusBadRequest, ErrorResponse{Error: betValidation.Error(), Problems: betValidation.Problems}
	case errors.Is(err, analytics.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrNoBetsInScope):
		return http.StatusBadRequest, ErrorResponse{Error: "No bets found for the selected scope/filters."}
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid id."}
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, ErrorResponse{Error: "Malformed request body."}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"}
	case errors.Is(err, errForbidden), errors.Is(err, auth.ErrRegistrationClosed):
		return http.StatusForbidden, ErrorResponse{Error: "Forbidden"}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Not found"}
	case errors.Is(err, models.ErrDuplicateKey):
		return http.StatusConflict, ErrorResponse{Error: "Username is already taken."}
	case errors.Is(err, auth.ErrThrottled):
		return http.StatusTooManyRequests, ErrorResponse{Error: "Too many login attempts. Try again later."}
	case errors.Is(err, narrative.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "Narrative analysis is not configured."}
	case errors.Is(err, narrative.ErrUpstream):
		return http.StatusBadGateway, ErrorResponse{Error: "Failed to generate analysis."}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	entry := s.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	respondJSON(w, status, body)
}
