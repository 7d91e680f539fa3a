package api

import (
	"net/http"
	"time"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
}

type registerResponse struct {
	Student   *models.Student `json:"student"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	student, err := s.Students.Register(r.Context(), req.Username)
	if err != nil {
		handleError(w, r, err)
		return
	}

	token, expires, err := s.Tokens.Issue(student.ID)
	if err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}

	log.Info("student registered: id=%d", student.ID)
	writeJSON(w, http.StatusCreated, registerResponse{Student: student, Token: token, ExpiresAt: expires})
}

func (s *Server) handleCurrentStudent(w http.ResponseWriter, r *http.Request) {
	student, err := s.Students.Get(r.Context(), studentIDFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}
