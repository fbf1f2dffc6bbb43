package services_test

import (
	"context"
	"testing"

	"movs/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCycle(ctx, 7)
	ctx = services.WithRequestID(ctx, "req-123")

	if seq, ok := services.CycleFromContext(ctx); !ok || seq != 7 {
		t.Fatalf("unexpected cycle: %v %v", seq, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCycle(ctx, 0)
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.CycleFromContext(ctx); ok {
		t.Fatal("expected no cycle value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
}
