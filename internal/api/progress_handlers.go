package api

import (
	"net/http"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/models"
)

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	payload, err := s.Progress.GetProgress(r.Context(), studentIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleProgressSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Progress.GetSummary(r.Context(), studentIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSaveLevel(w http.ResponseWriter, r *http.Request) {
	levelID, err := intParam(r, "levelID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var level models.LevelProgress
	if err := decodeJSON(w, r, &level); err != nil {
		handleError(w, r, err)
		return
	}
	if level.LevelID == 0 {
		level.LevelID = levelID
	}
	if level.LevelID != levelID {
		handleError(w, r, errors.NewValidationError("levelId", "does not match the URL"))
		return
	}

	summary, err := s.Progress.SaveLevel(r.Context(), studentIDFromContext(r.Context()), level)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
