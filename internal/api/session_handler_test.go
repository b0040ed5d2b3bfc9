package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/service"
)

// mockSessionService is a mock implementation of the SessionService interface
type mockSessionService struct {
	startFn        func(ctx context.Context, maxDuration time.Duration) (*domain.Session, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	getCurrentFn   func(ctx context.Context) (*domain.Session, error)
	pauseFn        func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	resumeFn       func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	completeFn     func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	abandonFn      func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	nextProblemFn  func(ctx context.Context, sessionID uuid.UUID) (*domain.Problem, error)
	submitReviewFn func(ctx context.Context, input service.SubmitReviewInput) (*domain.ProblemStats, error)
	skipFn         func(ctx context.Context, sessionID, problemID uuid.UUID, timeSpent time.Duration) error
	expireFn       func(ctx context.Context) (int64, error)
}

func (m *mockSessionService) StartSession(
	ctx context.Context,
	maxDuration time.Duration,
) (*domain.Session, error) {
	return m.startFn(ctx, maxDuration)
}

func (m *mockSessionService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return m.getFn(ctx, id)
}

func (m *mockSessionService) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	return m.getCurrentFn(ctx)
}

func (m *mockSessionService) PauseSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return m.pauseFn(ctx, id)
}

func (m *mockSessionService) ResumeSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return m.resumeFn(ctx, id)
}

func (m *mockSessionService) CompleteSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return m.completeFn(ctx, id)
}

func (m *mockSessionService) AbandonSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return m.abandonFn(ctx, id)
}

func (m *mockSessionService) NextProblem(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.Problem, error) {
	return m.nextProblemFn(ctx, sessionID)
}

func (m *mockSessionService) SubmitReview(
	ctx context.Context,
	input service.SubmitReviewInput,
) (*domain.ProblemStats, error) {
	return m.submitReviewFn(ctx, input)
}

func (m *mockSessionService) SkipProblem(
	ctx context.Context,
	sessionID, problemID uuid.UUID,
	timeSpent time.Duration,
) error {
	return m.skipFn(ctx, sessionID, problemID, timeSpent)
}

func (m *mockSessionService) ExpireStaleSessions(ctx context.Context) (int64, error) {
	return m.expireFn(ctx)
}

func sessionRouter(svc service.SessionService, t *testing.T) *chi.Mux {
	t.Helper()

	handler := NewSessionHandler(svc, 45*time.Minute, testHandlerLogger(t))
	r := chi.NewRouter()
	r.Post("/sessions", handler.StartSession)
	r.Get("/sessions/current", handler.GetCurrentSession)
	r.Get("/sessions/{id}", handler.GetSession)
	r.Post("/sessions/{id}/pause", handler.PauseSession)
	r.Post("/sessions/{id}/resume", handler.ResumeSession)
	r.Post("/sessions/{id}/complete", handler.CompleteSession)
	r.Post("/sessions/{id}/abandon", handler.AbandonSession)
	r.Get("/sessions/{id}/next", handler.NextProblem)
	r.Post("/sessions/{id}/reviews", handler.SubmitReview)
	r.Post("/sessions/{id}/skip", handler.SkipProblem)
	return r
}

func sampleSession() *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		ID:          uuid.New(),
		StartedAt:   now,
		ResumedAt:   now,
		Status:      domain.SessionActive,
		MaxDuration: 45 * time.Minute,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestStartSessionHandler(t *testing.T) {
	session := sampleSession()

	var gotDuration time.Duration
	svc := &mockSessionService{
		startFn: func(ctx context.Context, maxDuration time.Duration) (*domain.Session, error) {
			gotDuration = maxDuration
			return session, nil
		},
	}
	router := sessionRouter(svc, t)

	// Explicit duration
	req := httptest.NewRequest(
		http.MethodPost, "/sessions", bytes.NewBufferString(`{"duration_minutes":30}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 30*time.Minute, gotDuration)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, session.ID.String(), resp.ID)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, 45*60, resp.MaxDurationSeconds)

	// Omitted duration falls back to the handler default
	req = httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 45*time.Minute, gotDuration)

	// Out-of-bounds duration is rejected before the service runs
	req = httptest.NewRequest(
		http.MethodPost, "/sessions", bytes.NewBufferString(`{"duration_minutes":500}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetCurrentSessionHandler(t *testing.T) {
	svc := &mockSessionService{
		getCurrentFn: func(ctx context.Context) (*domain.Session, error) {
			return nil, service.ErrNoActiveSession
		},
	}
	router := sessionRouter(svc, t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/current", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionTransitionHandlers(t *testing.T) {
	session := sampleSession()

	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
	}{
		{"pause", "/pause", nil, http.StatusOK},
		{"resume", "/resume", nil, http.StatusOK},
		{"complete", "/complete", nil, http.StatusOK},
		{"abandon", "/abandon", nil, http.StatusOK},
		{"pause finished session", "/pause", service.ErrSessionTerminal, http.StatusConflict},
		{"resume expired session", "/resume", domain.ErrSessionExpired, http.StatusGone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn := func(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
				if tc.err != nil {
					return nil, tc.err
				}
				return session, nil
			}
			svc := &mockSessionService{
				pauseFn: fn, resumeFn: fn, completeFn: fn, abandonFn: fn,
			}
			router := sessionRouter(svc, t)

			req := httptest.NewRequest(
				http.MethodPost, "/sessions/"+session.ID.String()+tc.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestNextProblemHandler(t *testing.T) {
	session := sampleSession()
	problem := sampleProblem()

	tests := []struct {
		name           string
		serviceResult  *domain.Problem
		serviceError   error
		expectedStatus int
	}{
		{"success", problem, nil, http.StatusOK},
		{"nothing selectable", nil, service.ErrNoProblemsAvailable, http.StatusNoContent},
		{"session expired", nil, domain.ErrSessionExpired, http.StatusGone},
		{"session paused", nil, domain.ErrSessionNotActive, http.StatusConflict},
		{"unknown session", nil, service.ErrSessionNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSessionService{
				nextProblemFn: func(ctx context.Context, sessionID uuid.UUID) (*domain.Problem, error) {
					return tc.serviceResult, tc.serviceError
				},
			}
			router := sessionRouter(svc, t)

			req := httptest.NewRequest(
				http.MethodGet, "/sessions/"+session.ID.String()+"/next", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusOK {
				var resp ProblemResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, problem.ID.String(), resp.ID)
			}
		})
	}
}

func TestSubmitReviewHandler(t *testing.T) {
	session := sampleSession()
	problemID := uuid.New()

	var gotInput service.SubmitReviewInput
	svc := &mockSessionService{
		submitReviewFn: func(ctx context.Context, input service.SubmitReviewInput) (*domain.ProblemStats, error) {
			gotInput = input
			return &domain.ProblemStats{
				ProblemID:    problemID,
				EaseFactor:   2.5,
				Interval:     48 * time.Hour,
				NextReviewAt: time.Now().UTC().Add(48 * time.Hour),
				LastRating:   input.Rating,
				ReviewCount:  1,
			}, nil
		},
	}
	router := sessionRouter(svc, t)

	body, err := json.Marshal(map[string]interface{}{
		"problem_id":         problemID.String(),
		"rating":             0,
		"time_spent_seconds": 120,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodPost, "/sessions/"+session.ID.String()+"/reviews", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, session.ID, gotInput.SessionID)
	assert.Equal(t, problemID, gotInput.ProblemID)
	assert.Equal(t, domain.RatingFailed, gotInput.Rating, "rating zero survives decoding")
	assert.Equal(t, 2*time.Minute, gotInput.TimeSpent)

	var resp ProblemStatsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.InDelta(t, 48.0, resp.IntervalHours, 0.001)
}

func TestSubmitReviewHandlerValidation(t *testing.T) {
	session := sampleSession()

	tests := []struct {
		name string
		body string
	}{
		{"missing rating", `{"problem_id":"` + uuid.NewString() + `"}`},
		{"rating out of range", `{"problem_id":"` + uuid.NewString() + `","rating":9}`},
		{"missing problem", `{"rating":3}`},
		{"bad problem ID", `{"problem_id":"nope","rating":3}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSessionService{
				submitReviewFn: func(ctx context.Context, input service.SubmitReviewInput) (*domain.ProblemStats, error) {
					t.Fatal("service should not be called for invalid input")
					return nil, nil
				},
			}
			router := sessionRouter(svc, t)

			req := httptest.NewRequest(
				http.MethodPost,
				"/sessions/"+session.ID.String()+"/reviews",
				bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestSkipProblemHandler(t *testing.T) {
	session := sampleSession()
	problemID := uuid.New()

	var gotProblemID uuid.UUID
	svc := &mockSessionService{
		skipFn: func(ctx context.Context, sessionID, pid uuid.UUID, timeSpent time.Duration) error {
			gotProblemID = pid
			return nil
		},
	}
	router := sessionRouter(svc, t)

	body := `{"problem_id":"` + problemID.String() + `","time_spent_seconds":30}`
	req := httptest.NewRequest(
		http.MethodPost, "/sessions/"+session.ID.String()+"/skip", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, problemID, gotProblemID)
}
