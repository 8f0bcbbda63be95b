package shared

import (
	"context"
	"testing"
)

func TestSetTraceIDGeneratesHexID(t *testing.T) {
	ctx := SetTraceID(context.Background())

	traceID := GetTraceID(ctx)
	if len(traceID) != TraceIDLength*2 {
		t.Errorf("expected %d-character trace ID, got %q", TraceIDLength*2, traceID)
	}
}

func TestTraceIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GetTraceID(SetTraceID(context.Background()))
		if seen[id] {
			t.Fatalf("duplicate trace ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestGetTraceIDMissing(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID for bare context, got %q", id)
	}
}
