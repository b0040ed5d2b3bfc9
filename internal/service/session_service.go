package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/svenhuster/spacecode/internal/domain"
	"github.com/svenhuster/spacecode/internal/domain/srs"
	"github.com/svenhuster/spacecode/internal/platform/logger"
	"github.com/svenhuster/spacecode/internal/scheduler"
	"github.com/svenhuster/spacecode/internal/store"
)

// SubmitReviewInput carries a rating submission for a problem.
type SubmitReviewInput struct {
	SessionID uuid.UUID // uuid.Nil when reviewing outside a session
	ProblemID uuid.UUID
	Rating    domain.Rating
	TimeSpent time.Duration
}

// SessionService manages the practice session lifecycle, problem selection
// within a session, and rating submissions.
type SessionService interface {
	// StartSession begins a new session with the given time budget. Any
	// session still active or paused is abandoned first; there is at most
	// one running session at a time.
	StartSession(ctx context.Context, maxDuration time.Duration) (*domain.Session, error)

	// GetSession retrieves a session by ID, expiring it first if its time
	// budget ran out. Returns ErrSessionNotFound if it does not exist.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// GetCurrentSession retrieves the running (active or paused) session.
	// Returns ErrNoActiveSession when there is none.
	GetCurrentSession(ctx context.Context) (*domain.Session, error)

	// PauseSession freezes a session's elapsed time accounting.
	PauseSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// ResumeSession restarts elapsed time accounting for a paused session.
	ResumeSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// CompleteSession ends a session normally.
	CompleteSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// AbandonSession ends a session without completing it.
	AbandonSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// NextProblem selects the problem to present next in the session.
	// Expiry is checked authoritatively before selection: a session past
	// its budget is expired and domain.ErrSessionExpired is returned even
	// if the client believed it was still running.
	// Returns ErrNoProblemsAvailable when nothing is selectable.
	NextProblem(ctx context.Context, sessionID uuid.UUID) (*domain.Problem, error)

	// SubmitReview records a rating: it appends to the review log, advances
	// the problem's scheduling stats through the spaced repetition
	// algorithm, and bumps the session's review counter, all in one
	// transaction.
	SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.ProblemStats, error)

	// SkipProblem records a skip marker in the review log without touching
	// the problem's scheduling stats.
	SkipProblem(ctx context.Context, sessionID, problemID uuid.UUID, timeSpent time.Duration) error

	// ExpireStaleSessions transitions every over-budget session to expired.
	// It is called periodically by the server's sweep loop.
	ExpireStaleSessions(ctx context.Context) (int64, error)
}

// Verify interface compliance at compile time
var _ SessionService = (*sessionServiceImpl)(nil)

type sessionServiceImpl struct {
	problemStore store.ProblemStore
	statsStore   store.ProblemStatsStore
	reviewStore  store.ReviewStore
	sessionStore store.SessionStore
	srsService   srs.Service
	engine       *scheduler.Engine
	logger       *slog.Logger

	// strategy is "continuous" or "batch"; batch sessions keep their
	// composed queue here for the session's lifetime.
	strategy  string
	batchSize int
	batchMu   sync.Mutex
	batches   map[uuid.UUID]*scheduler.BatchStrategy

	// runTx executes a function within a database transaction. Tests
	// replace it to run against in-memory fakes.
	runTx func(ctx context.Context, fn store.TxFn) error

	now func() time.Time
}

// SessionServiceConfig bundles the scheduler settings for session creation.
type SessionServiceConfig struct {
	Strategy  string
	BatchSize int
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	db *sql.DB,
	problemStore store.ProblemStore,
	statsStore store.ProblemStatsStore,
	reviewStore store.ReviewStore,
	sessionStore store.SessionStore,
	srsService srs.Service,
	engine *scheduler.Engine,
	cfg SessionServiceConfig,
	logger *slog.Logger,
) SessionService {
	// Validate inputs
	if problemStore == nil {
		panic("problemStore cannot be nil")
	}
	if statsStore == nil {
		panic("statsStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		problemStore: problemStore,
		statsStore:   statsStore,
		reviewStore:  reviewStore,
		sessionStore: sessionStore,
		srsService:   srsService,
		engine:       engine,
		logger:       logger.With(slog.String("component", "session_service")),
		strategy:     cfg.Strategy,
		batchSize:    cfg.BatchSize,
		batches:      make(map[uuid.UUID]*scheduler.BatchStrategy),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		now: time.Now,
	}
}

// StartSession implements SessionService.StartSession.
func (s *sessionServiceImpl) StartSession(ctx context.Context, maxDuration time.Duration) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	session, err := domain.NewSession(maxDuration, now)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessionStore.WithTx(tx)

		// Abandon whatever was running; one session at a time.
		current, err := sessions.GetCurrent(ctx)
		if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			return err
		}
		if current != nil {
			if abandonErr := current.Abandon(now); abandonErr == nil {
				if err := sessions.Update(ctx, current); err != nil {
					return err
				}
				log.Info("abandoned previous session",
					slog.String("session_id", current.ID.String()))
			}
		}

		return sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, NewServiceError("start_session", "failed to start session", err)
	}

	log.Info("session started",
		slog.String("session_id", session.ID.String()),
		slog.Duration("max_duration", maxDuration))
	return session, nil
}

// GetSession implements SessionService.GetSession.
func (s *sessionServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, NewServiceError("get_session", "failed to get session", err)
	}

	if expired, err := s.expireIfNeeded(ctx, session); err != nil {
		return nil, err
	} else if expired {
		return session, nil
	}

	return session, nil
}

// GetCurrentSession implements SessionService.GetCurrentSession.
func (s *sessionServiceImpl) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessionStore.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, NewServiceError("get_current_session", "failed to get current session", err)
	}

	if expired, err := s.expireIfNeeded(ctx, session); err != nil {
		return nil, err
	} else if expired {
		return nil, ErrNoActiveSession
	}

	return session, nil
}

// PauseSession implements SessionService.PauseSession.
func (s *sessionServiceImpl) PauseSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.transition(ctx, id, "pause_session", (*domain.Session).Pause)
}

// ResumeSession implements SessionService.ResumeSession.
func (s *sessionServiceImpl) ResumeSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.transition(ctx, id, "resume_session", (*domain.Session).Resume)
}

// CompleteSession implements SessionService.CompleteSession.
func (s *sessionServiceImpl) CompleteSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	defer s.dropBatch(id)
	return s.transition(ctx, id, "complete_session", (*domain.Session).Complete)
}

// AbandonSession implements SessionService.AbandonSession.
func (s *sessionServiceImpl) AbandonSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	defer s.dropBatch(id)
	return s.transition(ctx, id, "abandon_session", (*domain.Session).Abandon)
}

// transition loads a session under lock, checks expiry, applies the state
// change, and persists the result.
func (s *sessionServiceImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	operation string,
	change func(*domain.Session, time.Time) error,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	var session *domain.Session
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sessions := s.sessionStore.WithTx(tx)

		var err error
		session, err = sessions.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		// Budget exhaustion wins over the requested transition.
		if !session.Terminal() && session.IsExpired(now) {
			if err := session.Expire(now); err != nil {
				return err
			}
			if err := sessions.Update(ctx, session); err != nil {
				return err
			}
			return domain.ErrSessionExpired
		}

		if err := change(session, now); err != nil {
			return err
		}
		return sessions.Update(ctx, session)
	})

	if err != nil {
		if errors.Is(err, ErrSessionNotFound) ||
			errors.Is(err, domain.ErrSessionExpired) ||
			errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		return nil, NewServiceError(operation, "failed to update session", err)
	}

	log.Info("session state changed",
		slog.String("session_id", id.String()),
		slog.String("status", string(session.Status)))
	return session, nil
}

// NextProblem implements SessionService.NextProblem.
func (s *sessionServiceImpl) NextProblem(ctx context.Context, sessionID uuid.UUID) (*domain.Problem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if session.Status == domain.SessionExpired {
		return nil, domain.ErrSessionExpired
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}

	problems, err := s.problemStore.List(ctx, false)
	if err != nil {
		return nil, NewServiceError("next_problem", "failed to load problem pool", err)
	}

	problem := s.strategyFor(sessionID).NextProblem(problems, now, session.Remaining(now))
	if problem == nil {
		log.Debug("nothing selectable for session",
			slog.String("session_id", sessionID.String()))
		return nil, ErrNoProblemsAvailable
	}

	log.Debug("selected next problem",
		slog.String("session_id", sessionID.String()),
		slog.String("problem_id", problem.ID.String()))
	return problem, nil
}

// SubmitReview implements SessionService.SubmitReview.
func (s *sessionServiceImpl) SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.ProblemStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	if err := input.Rating.Validate(); err != nil {
		return nil, err
	}

	var updatedStats *domain.ProblemStats
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		problems := s.problemStore.WithTx(tx)
		stats := s.statsStore.WithTx(tx)
		reviews := s.reviewStore.WithTx(tx)
		sessions := s.sessionStore.WithTx(tx)

		if _, err := problems.GetByID(ctx, input.ProblemID); err != nil {
			if errors.Is(err, store.ErrProblemNotFound) {
				return ErrProblemNotFound
			}
			return err
		}

		var session *domain.Session
		if input.SessionID != uuid.Nil {
			var err error
			session, err = sessions.GetForUpdate(ctx, input.SessionID)
			if err != nil {
				if errors.Is(err, store.ErrSessionNotFound) {
					return ErrSessionNotFound
				}
				return err
			}

			if session.Terminal() {
				return ErrSessionTerminal
			}
			if session.IsExpired(now) {
				if err := session.Expire(now); err != nil {
					return err
				}
				if err := sessions.Update(ctx, session); err != nil {
					return err
				}
				return domain.ErrSessionExpired
			}
			if session.Status != domain.SessionActive {
				return domain.ErrSessionNotActive
			}
		}

		// Missing stats means first review; the algorithm initializes them.
		current, err := stats.GetForUpdate(ctx, input.ProblemID)
		if err != nil && !errors.Is(err, store.ErrProblemStatsNotFound) {
			return err
		}

		updatedStats, err = s.srsService.RecordRating(input.ProblemID, current, input.Rating, now)
		if err != nil {
			return err
		}
		if err := stats.Upsert(ctx, updatedStats); err != nil {
			return err
		}

		review, err := domain.NewReview(input.ProblemID, input.SessionID, input.Rating, input.TimeSpent, now)
		if err != nil {
			return err
		}
		if err := reviews.Create(ctx, review); err != nil {
			return err
		}

		if session != nil {
			session.ProblemsReviewed++
			session.UpdatedAt = now
			if err := sessions.Update(ctx, session); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrProblemNotFound) ||
			errors.Is(err, ErrSessionNotFound) ||
			errors.Is(err, ErrSessionTerminal) ||
			errors.Is(err, domain.ErrSessionNotActive) ||
			errors.Is(err, domain.ErrSessionExpired) {
			return nil, err
		}
		return nil, NewServiceError("submit_review", "failed to record review", err)
	}

	log.Info("review recorded",
		slog.String("problem_id", input.ProblemID.String()),
		slog.Int("rating", int(input.Rating)),
		slog.Time("next_review_at", updatedStats.NextReviewAt))
	return updatedStats, nil
}

// SkipProblem implements SessionService.SkipProblem.
func (s *sessionServiceImpl) SkipProblem(ctx context.Context, sessionID, problemID uuid.UUID, timeSpent time.Duration) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		problems := s.problemStore.WithTx(tx)
		reviews := s.reviewStore.WithTx(tx)
		sessions := s.sessionStore.WithTx(tx)

		if _, err := problems.GetByID(ctx, problemID); err != nil {
			if errors.Is(err, store.ErrProblemNotFound) {
				return ErrProblemNotFound
			}
			return err
		}

		session, err := sessions.GetForUpdate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		if session.Terminal() {
			return ErrSessionTerminal
		}
		if session.IsExpired(now) {
			if err := session.Expire(now); err != nil {
				return err
			}
			if err := sessions.Update(ctx, session); err != nil {
				return err
			}
			return domain.ErrSessionExpired
		}
		if session.Status != domain.SessionActive {
			return domain.ErrSessionNotActive
		}

		review, err := domain.NewReview(problemID, sessionID, domain.RatingSkipped, timeSpent, now)
		if err != nil {
			return err
		}
		if err := reviews.Create(ctx, review); err != nil {
			return err
		}

		session.ProblemsReviewed++
		session.UpdatedAt = now
		return sessions.Update(ctx, session)
	})

	if err != nil {
		if errors.Is(err, ErrProblemNotFound) ||
			errors.Is(err, ErrSessionNotFound) ||
			errors.Is(err, ErrSessionTerminal) ||
			errors.Is(err, domain.ErrSessionNotActive) ||
			errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		return NewServiceError("skip_problem", "failed to record skip", err)
	}

	log.Debug("problem skipped",
		slog.String("problem_id", problemID.String()),
		slog.String("session_id", sessionID.String()))
	return nil
}

// ExpireStaleSessions implements SessionService.ExpireStaleSessions.
func (s *sessionServiceImpl) ExpireStaleSessions(ctx context.Context) (int64, error) {
	expired, err := s.sessionStore.ExpireStale(ctx, s.now().UTC())
	if err != nil {
		return 0, NewServiceError("expire_stale_sessions", "failed to expire sessions", err)
	}
	return expired, nil
}

// expireIfNeeded persists the expired status for an over-budget session.
// It reports whether the session was expired.
func (s *sessionServiceImpl) expireIfNeeded(ctx context.Context, session *domain.Session) (bool, error) {
	now := s.now().UTC()
	if session.Terminal() || !session.IsExpired(now) {
		return session.Status == domain.SessionExpired, nil
	}

	if err := session.Expire(now); err != nil {
		return false, NewServiceError("expire_session", "failed to expire session", err)
	}
	if err := s.sessionStore.Update(ctx, session); err != nil {
		return false, NewServiceError("expire_session", "failed to persist expiry", err)
	}
	s.dropBatch(session.ID)
	return true, nil
}

// strategyFor returns the selection strategy for a session. Continuous mode
// shares one stateless strategy; batch mode keeps per-session queues.
func (s *sessionServiceImpl) strategyFor(sessionID uuid.UUID) scheduler.Strategy {
	if s.strategy != "batch" {
		return scheduler.NewContinuousStrategy(s.engine)
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	batch, ok := s.batches[sessionID]
	if !ok {
		batch = scheduler.NewBatchStrategy(s.engine, s.batchSize)
		s.batches[sessionID] = batch
	}
	return batch
}

func (s *sessionServiceImpl) dropBatch(sessionID uuid.UUID) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	delete(s.batches, sessionID)
}
