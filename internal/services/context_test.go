package services_test

import (
	"context"
	"testing"

	"rallycut/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if _, ok := services.VideoIDFromContext(ctx); ok {
		t.Fatal("expected no video id on fresh context")
	}

	ctx = services.WithVideoID(ctx, "match-01")
	ctx = services.WithStage(ctx, "detect")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.VideoIDFromContext(ctx); !ok || id != "match-01" {
		t.Fatalf("video id = %q, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "detect" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if req, ok := services.RequestIDFromContext(ctx); !ok || req != "req-123" {
		t.Fatalf("request id = %q, %v", req, ok)
	}
}

func TestContextHelpersIgnoreEmptyValues(t *testing.T) {
	ctx := services.WithStage(context.Background(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("empty stage should not be stored")
	}
}
