package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/api/shared"
	"github.com/svenhuster/spacecode/internal/service"
)

// defaultHistoryLimit bounds review history responses when the client does
// not ask for a specific page size.
const defaultHistoryLimit = 50

// StatsHandler handles study statistics HTTP requests
type StatsHandler struct {
	statsService service.StatsService
	logger       *slog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService service.StatsService, logger *slog.Logger) *StatsHandler {
	if statsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("statsService cannot be nil for StatsHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}

	return &StatsHandler{
		statsService: statsService,
		logger:       logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStudyOverview handles GET /stats requests. The overview is computed
// from a single snapshot of the active problem set.
func (h *StatsHandler) GetStudyOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.statsService.GetStudyOverview(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, overview)
}

// GetReviewHistory handles GET /problems/{id}/reviews requests, newest
// first. The limit query parameter caps the page size.
func (h *StatsHandler) GetReviewHistory(w http.ResponseWriter, r *http.Request) {
	problemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid problem ID")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	reviews, err := h.statsService.GetReviewHistory(r.Context(), problemID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, reviewToResponse(review))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
