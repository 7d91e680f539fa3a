package api

import (
	"net/http"

	"github.com/abacusquest/abacusquest/internal/models"
)

type evaluateResponse struct {
	Unlocked []models.Achievement      `json:"unlocked"`
	State    *models.GamificationState `json:"state"`
}

func (s *Server) handleGamificationState(w http.ResponseWriter, r *http.Request) {
	state, err := s.Gamification.GetState(r.Context(), studentIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEvaluateAchievements(w http.ResponseWriter, r *http.Request) {
	studentID := studentIDFromContext(r.Context())
	unlocked, err := s.Gamification.Evaluate(r.Context(), studentID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	state, err := s.Gamification.GetState(r.Context(), studentID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Unlocked: unlocked, State: state})
}

func (s *Server) handleResetGamification(w http.ResponseWriter, r *http.Request) {
	if err := s.Gamification.Reset(r.Context(), studentIDFromContext(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
