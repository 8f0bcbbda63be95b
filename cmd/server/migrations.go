package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/phrazzld/taskdeck-api/internal/config"
)

// migrationsDir is the migrations directory relative to the project root.
const migrationsDir = "migrations"

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Fatalf forwards to slog.Error without calling os.Exit so main can
// handle the exit consistently.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// runMigrations executes a goose migration command against the configured
// database.
func runMigrations(cfg *config.Config, command, migrationName string) error {
	migrationLogger := slog.Default().With(
		"component", "migrations",
		"command", command,
	)

	goose.SetLogger(&slogGooseLogger{})

	dbURL := cfg.Database.URL
	if dbURL == "" {
		return fmt.Errorf("database URL is empty: check your configuration")
	}
	migrationLogger.Info("Using database URL", "url", maskDatabaseURL(dbURL))

	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	migrationLogger.Info("Using migrations directory", "path", dir)

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			migrationLogger.Error("Error closing database connection", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	start := time.Now()
	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "reset":
		err = goose.Reset(db, dir)
	case "status":
		err = goose.Status(db, dir)
	case "version":
		err = goose.Version(db, dir)
	case "create":
		if migrationName == "" {
			return fmt.Errorf("migration name is required for 'create' command")
		}
		err = goose.Create(db, dir, migrationName, "sql")
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, version, or create)",
			command,
		)
	}
	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	migrationLogger.Info("Migration operation completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// findMigrationsDir locates the migrations directory: first relative to
// the working directory, then by walking up to the module root.
func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	dir := cwd
	for i := 0; i < 10; i++ {
		candidate := filepath.Join(dir, migrationsDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not locate %s directory from %s", migrationsDir, cwd)
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsedURL.User != nil {
		parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
		return parsedURL.String()
	}
	return dbURL
}
