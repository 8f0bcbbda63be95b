// Package main implements the entry point for the TaskDeck API server,
// a task management service backed by PostgreSQL with a Redis
// read-through cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/taskdeck-api/internal/config"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command instead of the server (up, down, reset, status, version, create)")
	migrationName := flag.String("migration-name", "",
		"name for a new migration (used with -migrate create)")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd, *migrationName); err != nil {
			appLogger.Error("Migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(context.Background(), cfg, appLogger); err != nil {
		appLogger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_configured", cfg.Cache.RedisAddr != "")

	return cfg, appLogger, nil
}

// runServer wires the application dependencies and runs the HTTP server
// until shutdown.
func runServer(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		// newApplication does not take ownership of db until it succeeds
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("Error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
