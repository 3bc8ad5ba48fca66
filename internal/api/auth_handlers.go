package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/betting-tracker/internal/auth"
	"github.com/yourusername/betting-tracker/internal/models"
)

const cookieName = "token"

type cookieSettings struct {
	secure bool
	maxAge time.Duration
}

// sessionCookie is HttpOnly. Secure cookies use SameSite=None so a frontend
// on another origin can send them.
func (c cookieSettings) sessionCookie(value string, maxAge time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode
	}
	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge.Seconds())
		cookie.Expires = time.Now().Add(maxAge)
	} else {
		cookie.MaxAge = -1
	}
	return cookie
}

// UserView is the public form of an account
type UserView struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type sessionResponse struct {
	User UserView `json:"user"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 5<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

func (s *Server) startSession(w http.ResponseWriter, session *auth.Session, status int) {
	http.SetCookie(w, s.cookie.sessionCookie(session.Token, s.cookie.maxAge))
	respondJSON(w, status, sessionResponse{
		User: UserView{Username: session.User.Username, Role: session.User.Role},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		s.respondError(w, r, err)
		return
	}
	session, err := s.auth.Register(r.Context(), creds)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.startSession(w, session, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		s.respondError(w, r, err)
		return
	}
	session, err := s.auth.Login(r.Context(), creds, clientKey(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.startSession(w, session, http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.cookie.sessionCookie("", 0))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	profile, err := s.profiles.Me(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, UserView{Username: profile.Username, Role: profile.Role})
}
