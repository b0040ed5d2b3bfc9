package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/api/shared"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/service"
)

// ProblemHandler handles problem catalog HTTP requests
type ProblemHandler struct {
	problemService service.ProblemService
	logger         *slog.Logger
}

// NewProblemHandler creates a new ProblemHandler
func NewProblemHandler(problemService service.ProblemService, logger *slog.Logger) *ProblemHandler {
	if problemService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("problemService cannot be nil for ProblemHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProblemHandler")
	}

	return &ProblemHandler{
		problemService: problemService,
		logger:         logger.With(slog.String("component", "problem_handler")),
	}
}

// CreateProblem handles POST /problems requests.
// A deactivated problem with the same URL is reactivated rather than
// duplicated; both cases return the problem with 201 Created.
func (h *ProblemHandler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateProblemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), req.URL)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("problem created", slog.String("problem_id", problem.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, problemToResponse(problem))
}

// ListProblems handles GET /problems requests. The include_inactive query
// parameter widens the listing to deactivated problems.
func (h *ProblemHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	problems, err := h.problemService.ListProblems(r.Context(), includeInactive)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ProblemResponse, 0, len(problems))
	for _, p := range problems {
		responses = append(responses, problemToResponse(p))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetProblem handles GET /problems/{id} requests.
func (h *ProblemHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.problemID(w, r)
	if !ok {
		return
	}

	problem, err := h.problemService.GetProblem(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, problemToResponse(problem))
}

// UpdateProblem handles PATCH /problems/{id} requests.
func (h *ProblemHandler) UpdateProblem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.problemID(w, r)
	if !ok {
		return
	}

	var req UpdateProblemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	problem, err := h.problemService.UpdateProblem(r.Context(), id, service.ProblemUpdate{
		Title:      req.Title,
		Number:     req.Number,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
		Notes:      req.Notes,
		IsActive:   req.IsActive,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("problem updated", slog.String("problem_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, problemToResponse(problem))
}

// DeleteProblem handles DELETE /problems/{id} requests. The problem's stats
// and review log are removed with it.
func (h *ProblemHandler) DeleteProblem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.problemID(w, r)
	if !ok {
		return
	}

	if err := h.problemService.DeleteProblem(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("problem deleted", slog.String("problem_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ResetProgress handles POST /problems/{id}/reset requests. It wipes the
// problem's scheduling stats so it is treated as never reviewed; the review
// log is kept.
func (h *ProblemHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.problemID(w, r)
	if !ok {
		return
	}

	if err := h.problemService.ResetProgress(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("problem progress reset", slog.String("problem_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// problemID extracts and parses the problem ID from the URL. On failure it
// writes a 400 response and returns false.
func (h *ProblemHandler) problemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid problem ID")
		return uuid.Nil, false
	}
	return id, true
}
