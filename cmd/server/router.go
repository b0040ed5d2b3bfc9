package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/svenhuster/spacecode/internal/api"
	apiMiddleware "github.com/svenhuster/spacecode/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	defaultDuration := time.Duration(app.config.Session.DefaultDurationMinutes) * time.Minute
	problemHandler := api.NewProblemHandler(app.problemService, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessionService, defaultDuration, app.logger)
	statsHandler := api.NewStatsHandler(app.statsService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Problem catalog
		r.Post("/problems", problemHandler.CreateProblem)
		r.Get("/problems", problemHandler.ListProblems)
		r.Get("/problems/{id}", problemHandler.GetProblem)
		r.Patch("/problems/{id}", problemHandler.UpdateProblem)
		r.Delete("/problems/{id}", problemHandler.DeleteProblem)
		r.Post("/problems/{id}/reset", problemHandler.ResetProgress)
		r.Get("/problems/{id}/reviews", statsHandler.GetReviewHistory)

		// Study sessions
		r.Post("/sessions", sessionHandler.StartSession)
		r.Get("/sessions/current", sessionHandler.GetCurrentSession)
		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Post("/sessions/{id}/pause", sessionHandler.PauseSession)
		r.Post("/sessions/{id}/resume", sessionHandler.ResumeSession)
		r.Post("/sessions/{id}/complete", sessionHandler.CompleteSession)
		r.Post("/sessions/{id}/abandon", sessionHandler.AbandonSession)
		r.Get("/sessions/{id}/next", sessionHandler.NextProblem)
		r.Post("/sessions/{id}/reviews", sessionHandler.SubmitReview)
		r.Post("/sessions/{id}/skip", sessionHandler.SkipProblem)

		// Statistics
		r.Get("/stats", statsHandler.GetStudyOverview)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
