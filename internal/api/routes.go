package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)
	r.Use(securityHeadersMiddleware)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFoundRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errMethodNotAllowed)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/students", s.handleRegisterStudent)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/students/me", s.handleCurrentStudent)

			r.Get("/progress", s.handleGetProgress)
			r.Get("/progress/summary", s.handleProgressSummary)
			r.Put("/progress/levels/{levelID}", s.handleSaveLevel)

			r.Post("/practice/sessions", s.handleSubmitSession)
			r.Get("/practice/sessions", s.handleListSessions)
			r.Get("/practice/stats", s.handlePracticeStats)

			r.Get("/gamification", s.handleGamificationState)
			r.Post("/gamification/evaluate", s.handleEvaluateAchievements)
			r.Post("/gamification/reset", s.handleResetGamification)

			r.Get("/{list}", s.handleListItems)
			r.Post("/{list}", s.handleAddListItem)
			r.Patch("/{list}/{itemID}", s.handleUpdateListItem)
			r.Delete("/{list}/{itemID}", s.handleDeleteListItem)
		})
	})
	return r
}
