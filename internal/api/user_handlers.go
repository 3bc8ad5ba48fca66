package api

import (
	"net/http"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Me(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.profiles.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type usernameRequest struct {
	Username string `json:"username"`
}

// handleChangeUsername renames the caller and replaces the session cookie,
// since the token carries the username
func (s *Server) handleChangeUsername(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	session, err := s.auth.ChangeUsername(r.Context(), claimsFrom(r.Context()).UserID, req.Username)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.SetCookie(w, s.cookie.sessionCookie(session.Token, s.cookie.maxAge))
	respondJSON(w, http.StatusOK, usernameRequest{Username: session.User.Username})
}
