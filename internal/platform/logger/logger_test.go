package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskdeck-api/internal/config"
)

func TestSetupLogLevels(t *testing.T) {
	// Not parallel: Setup mutates the process default logger.
	levels := []string{"debug", "info", "warn", "error", "DEBUG", "Info"}
	for _, lvl := range levels {
		logger, err := Setup(config.ServerConfig{LogLevel: lvl})
		require.NoError(t, err, "Setup should accept level %q", lvl)
		require.NotNil(t, logger, "Setup should return a logger for level %q", lvl)
	}
}

func TestSetupInvalidLevelFallsBack(t *testing.T) {
	logger, err := Setup(config.ServerConfig{LogLevel: "verbose"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Invalid level falls back to info: debug is suppressed, info is not
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	base := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "test")

	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))
	assert.Same(t, base, FromContextOrDefault(ctx, nil))
}

func TestFromContextFallbacks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Empty context falls back to the process default
	assert.NotNil(t, FromContext(ctx))

	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Same(t, fallback, FromContextOrDefault(ctx, fallback))
}
