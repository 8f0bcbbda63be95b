package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's UUID, set by the
	// auth middleware.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID
	// (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID generates a fresh trace ID and stores it in the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID from the context, or "" if none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID produces a random 32-character hex trace ID. If the
// system entropy source fails it falls back to a time-derived ID rather
// than returning a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID",
			"error", err,
			"bytes_read", n)
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	fallback := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(fallback[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(fallback[8:12], uint32(time.Now().Nanosecond()))
	binary.BigEndian.PutUint32(fallback[12:16], uint32(time.Now().Unix()))
	return hex.EncodeToString(fallback)
}
