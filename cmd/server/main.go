// Package main implements the entry point for the SpaceCode server,
// which schedules LeetCode problem reviews using spaced repetition.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/svenhuster/spacecode/internal/config"
	"github.com/svenhuster/spacecode/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String(
		"migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, wires dependencies, and either executes a
// migration command or starts the HTTP server.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"strategy", cfg.Scheduler.Strategy)

	if migrateCmd != "" {
		if err := runMigrations(cfg, migrateCmd); err != nil {
			return fmt.Errorf("migration %q failed: %w", migrateCmd, err)
		}
		return nil
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		// newApplication does not own the connection until it returns
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// usage is kept for flag parse errors; flag's default output goes to stderr.
func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-migrate up|down|status]\n", os.Args[0])
		flag.PrintDefaults()
	}
}
