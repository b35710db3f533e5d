package usecase

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestStartTeamSpan_NoParentIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startTeamSpan(ctx, "usecase.SyncEngine.UpdateScore", "team-1", 2)
	defer span.End()

	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
	if span != usecaseNoopSpan {
		t.Fatalf("expected noop span without a parent")
	}
}

func TestStartUsecaseSpan_BlankName(t *testing.T) {
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), parent)

	_, span := startUsecaseSpan(ctx, "  ")
	if span != usecaseNoopSpan {
		t.Fatalf("expected noop span for blank name")
	}
}
