package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourusername/betting-tracker/internal/models"
)

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.ledger.List(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bets)
}

func (s *Server) handleCreateBet(w http.ResponseWriter, r *http.Request) {
	var in models.BetInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	bet, err := s.ledger.Create(r.Context(), claimsFrom(r.Context()).UserID, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, bet)
}

func (s *Server) handleUpdateBet(w http.ResponseWriter, r *http.Request) {
	var in models.BetInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	bet, err := s.ledger.Update(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bet)
}

func (s *Server) handleDeleteBet(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Bet deleted"})
}

func (s *Server) handleDeleteAllBets(w http.ResponseWriter, r *http.Request) {
	removed, err := s.ledger.DeleteAll(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"message": "All bets deleted", "deleted": removed})
}
