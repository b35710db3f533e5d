package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("party-leaderboard/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// Attribute keys shared by roster spans.
const (
	attrTeamStoreID = attribute.Key("party.team.store_id")
	attrGameSlot    = attribute.Key("party.team.slot")
)

func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// startTeamSpan tags the span with the team and, when slot >= 0, the slot.
func startTeamSpan(ctx context.Context, name, storeID string, slot int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attrTeamStoreID.String(storeID)}
	if slot >= 0 {
		attrs = append(attrs, attrGameSlot.Int(slot))
	}
	return startUsecaseSpan(ctx, name, attrs...)
}
