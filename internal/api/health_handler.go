package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskdeck-api/internal/api/shared"
	"github.com/phrazzld/taskdeck-api/internal/cache"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/redact"
)

// healthCheckTimeout bounds the dependency probes so a hung database
// cannot stall the health endpoint.
const healthCheckTimeout = 2 * time.Second

// DBPinger is the slice of the database handle the health check needs.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse reports the service's dependency status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// HealthHandler reports liveness of the API and its dependencies.
// The database is load-bearing: if it is down the service is down. The
// cache is not: a cache outage degrades the service but requests still
// succeed, so it never fails the health check.
type HealthHandler struct {
	db     DBPinger
	cache  cache.Cache
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler probing the given dependencies.
func NewHealthHandler(db DBPinger, c cache.Cache, log *slog.Logger) *HealthHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}
	return &HealthHandler{
		db:     db,
		cache:  c,
		logger: log.With(slog.String("component", "health_handler")),
	}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "up", Cache: "up"}
	status := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		log.Error("database health check failed", "error", redact.Error(err))
		resp.Status = "unavailable"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	if err := h.cache.Ping(ctx); err != nil {
		log.Warn("cache health check failed", "error", redact.Error(err))
		resp.Cache = "down"
		if resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}
