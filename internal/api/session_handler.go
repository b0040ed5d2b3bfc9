package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/api/shared"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/service"
)

// SessionHandler handles study session HTTP requests
type SessionHandler struct {
	sessionService service.SessionService
	logger         *slog.Logger

	// defaultDuration is applied when StartSessionRequest omits a duration.
	defaultDuration time.Duration
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(
	sessionService service.SessionService,
	defaultDuration time.Duration,
	logger *slog.Logger,
) *SessionHandler {
	if sessionService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessionService cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		sessionService:  sessionService,
		defaultDuration: defaultDuration,
		logger:          logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /sessions requests. Any session still running
// is abandoned first.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	duration := h.defaultDuration
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}

	session, err := h.sessionService.StartSession(r.Context(), duration)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session started", slog.String("session_id", session.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session, time.Now().UTC()))
}

// GetCurrentSession handles GET /sessions/current requests.
func (h *SessionHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.GetCurrentSession(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session, time.Now().UTC()))
}

// GetSession handles GET /sessions/{id} requests. Fetching a session past
// its budget reports it as expired.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session, time.Now().UTC()))
}

// PauseSession handles POST /sessions/{id}/pause requests.
func (h *SessionHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.PauseSession)
}

// ResumeSession handles POST /sessions/{id}/resume requests.
func (h *SessionHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.ResumeSession)
}

// CompleteSession handles POST /sessions/{id}/complete requests.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.CompleteSession)
}

// AbandonSession handles POST /sessions/{id}/abandon requests.
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sessionService.AbandonSession)
}

// NextProblem handles GET /sessions/{id}/next requests.
// It returns 204 No Content when the scheduler has nothing selectable.
func (h *SessionHandler) NextProblem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	problem, err := h.sessionService.NextProblem(r.Context(), id)
	if errors.Is(err, service.ErrNoProblemsAvailable) {
		log.Debug("no problems available", slog.String("session_id", id.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, problemToResponse(problem))
}

// SubmitReview handles POST /sessions/{id}/reviews requests. The response
// carries the problem's updated scheduling stats.
func (h *SessionHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	problemID, err := uuid.Parse(req.ProblemID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid problem ID")
		return
	}

	stats, err := h.sessionService.SubmitReview(r.Context(), service.SubmitReviewInput{
		SessionID: sessionID,
		ProblemID: problemID,
		Rating:    domain.Rating(*req.Rating),
		TimeSpent: time.Duration(req.TimeSpentSeconds) * time.Second,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review submitted",
		slog.String("session_id", sessionID.String()),
		slog.String("problem_id", problemID.String()),
		slog.Int("rating", *req.Rating))
	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(stats))
}

// SkipProblem handles POST /sessions/{id}/skip requests. A skip is logged
// but never feeds the scheduling algorithm.
func (h *SessionHandler) SkipProblem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SkipProblemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	problemID, err := uuid.Parse(req.ProblemID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid problem ID")
		return
	}

	timeSpent := time.Duration(req.TimeSpentSeconds) * time.Second
	if err := h.sessionService.SkipProblem(r.Context(), sessionID, problemID, timeSpent); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("problem skipped",
		slog.String("session_id", sessionID.String()),
		slog.String("problem_id", problemID.String()))
	w.WriteHeader(http.StatusNoContent)
}

type transitionFn func(ctx context.Context, id uuid.UUID) (*domain.Session, error)

// transition runs a session lifecycle operation and writes the updated
// session.
func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFn) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := fn(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session, time.Now().UTC()))
}

// sessionID extracts and parses the session ID from the URL. On failure it
// writes a 400 response and returns false.
func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}
