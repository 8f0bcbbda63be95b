// Package logger provides structured logging setup and context propagation
// helpers built on log/slog. A request-scoped logger (carrying the trace ID)
// travels through context.Context; code deep in the call stack retrieves it
// with FromContext instead of threading a logger parameter everywhere.
package logger
