package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskdeck-api/internal/cache"
	"github.com/phrazzld/taskdeck-api/internal/config"
	"github.com/phrazzld/taskdeck-api/internal/platform/postgres"
	"github.com/phrazzld/taskdeck-api/internal/service"
	"github.com/phrazzld/taskdeck-api/internal/service/auth"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// application holds the shared application dependencies so wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cache      cache.Cache
	closeCache func() error

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	taskService      service.TaskService
}

// newApplication creates an application with all dependencies initialized.
// The config, logger, and database connection must already be established.
func newApplication(cfg *config.Config, appLogger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	appLogger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, appLogger)
	app.taskStore = postgres.NewPostgresTaskStore(db, appLogger)

	app.cache, app.closeCache, err = setupCache(cfg.Cache, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	app.taskService, err = service.NewTaskService(app.taskStore, app.cache, cacheTTL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	appLogger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.closeCache != nil {
		if err := app.closeCache(); err != nil {
			app.logger.Error("Error closing cache connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
