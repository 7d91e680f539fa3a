package api

import (
	"net/http"

	"github.com/abacusquest/abacusquest/internal/models"
)

type sessionPage struct {
	Sessions []models.PracticeSession `json:"sessions"`
	Total    int                      `json:"total"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

func (s *Server) handleSubmitSession(w http.ResponseWriter, r *http.Request) {
	var session models.PracticeSession
	if err := decodeJSON(w, r, &session); err != nil {
		handleError(w, r, err)
		return
	}

	saved, err := s.Practice.SubmitSession(r.Context(), studentIDFromContext(r.Context()), session)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PracticeFilter{
		StudentID:    studentIDFromContext(r.Context()),
		PracticeType: q.Get("practiceType"),
		Operation:    q.Get("operation"),
	}

	var err error
	if filter.Since, err = queryTime(r, "since"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		handleError(w, r, err)
		return
	}

	sessions, total, err := s.Practice.ListSessions(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPage{Sessions: sessions, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (s *Server) handlePracticeStats(w http.ResponseWriter, r *http.Request) {
	since, err := queryTime(r, "since")
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.Practice.GetStats(r.Context(), studentIDFromContext(r.Context()), since)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
