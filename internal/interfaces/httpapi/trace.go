package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("party-leaderboard/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan only opens handler spans, and only under a request span, so
// filtered routes like /healthz never produce orphan roots.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

// tagTeam records the addressed team and slot on the handler span.
func tagTeam(span trace.Span, teamID string, slot int) {
	attrs := []attribute.KeyValue{attribute.String("party.team.store_id", teamID)}
	if slot >= 0 {
		attrs = append(attrs, attribute.Int("party.team.slot", slot))
	}
	span.SetAttributes(attrs...)
}
