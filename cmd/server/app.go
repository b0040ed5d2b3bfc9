package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/svenhuster/spacecode/internal/config"
	"github.com/svenhuster/spacecode/internal/domain/srs"
	"github.com/svenhuster/spacecode/internal/platform/postgres"
	"github.com/svenhuster/spacecode/internal/scheduler"
	"github.com/svenhuster/spacecode/internal/service"
	"github.com/svenhuster/spacecode/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	problemStore store.ProblemStore
	statsStore   store.ProblemStatsStore
	reviewStore  store.ReviewStore
	sessionStore store.SessionStore

	// Service interfaces
	srsService     srs.Service
	engine         *scheduler.Engine
	problemService service.ProblemService
	sessionService service.SessionService
	statsService   service.StatsService

	// sweepStop terminates the session expiry sweep loop.
	sweepStop chan struct{}
	sweepDone chan struct{}
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.problemStore = postgres.NewPostgresProblemStore(db, logger)
	app.statsStore = postgres.NewPostgresProblemStatsStore(db, logger)
	app.reviewStore = postgres.NewPostgresReviewStore(db, logger)
	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)

	// Initialize the spaced repetition service and scheduling engine
	app.srsService = srs.NewDefaultService()
	app.engine = scheduler.NewEngine(scheduler.DefaultConfig(), nil)

	// Initialize services
	app.problemService = service.NewProblemService(app.problemStore, app.statsStore, logger)
	app.sessionService = service.NewSessionService(
		db,
		app.problemStore,
		app.statsStore,
		app.reviewStore,
		app.sessionStore,
		app.srsService,
		app.engine,
		service.SessionServiceConfig{
			Strategy:  cfg.Scheduler.Strategy,
			BatchSize: cfg.Scheduler.BatchSize,
		},
		logger,
	)
	app.statsService = service.NewStatsService(app.problemStore, app.reviewStore, logger)

	app.startExpirySweep(ctx)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// startExpirySweep launches the periodic sweep that expires over-budget
// sessions server-side, so sessions end on time even when clients vanish.
func (app *application) startExpirySweep(ctx context.Context) {
	interval := time.Duration(app.config.Session.ExpirySweepSeconds) * time.Second
	app.sweepStop = make(chan struct{})
	app.sweepDone = make(chan struct{})

	sweepLogger := app.logger.With(slog.String("component", "session_sweep"))

	go func() {
		defer close(app.sweepDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				expired, err := app.sessionService.ExpireStaleSessions(ctx)
				if err != nil {
					sweepLogger.Error("session expiry sweep failed", "error", err)
					continue
				}
				if expired > 0 {
					sweepLogger.Info("expired stale sessions", "count", expired)
				}
			case <-app.sweepStop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	sweepLogger.Info("session expiry sweep started", "interval_seconds", int(interval.Seconds()))
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweepStop != nil {
		close(app.sweepStop)
		<-app.sweepDone
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
