package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/platform/resilience"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505", Message: "duplicate key"}, want: roster.ErrConstraintViolation},
		{name: "check violation", err: &pq.Error{Code: "23514"}, want: roster.ErrConstraintViolation},
		{name: "foreign key", err: &pq.Error{Code: "23503"}, want: roster.ErrRecordNotFound},
		{name: "connection class", err: &pq.Error{Code: "08006"}, want: roster.ErrStoreUnavailable},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01"}, want: roster.ErrStoreUnavailable},
		{name: "no rows", err: sql.ErrNoRows, want: roster.ErrRecordNotFound},
		{name: "bad conn", err: fmt.Errorf("exec: %w", driver.ErrBadConn), want: roster.ErrStoreUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, want: roster.ErrStoreUnavailable},
		{name: "circuit open", err: resilience.ErrCircuitOpen, want: roster.ErrStoreUnavailable},
		{name: "already classified", err: fmt.Errorf("x: %w", roster.ErrIrreconcilableSwap), want: roster.ErrIrreconcilableSwap},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyError("op", tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("classifyError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifyError_UnknownKeepsCause(t *testing.T) {
	cause := &pq.Error{Code: "42P01", Message: "relation teams does not exist"}
	got := classifyError("fetch teams", cause)

	for _, sentinel := range []error{roster.ErrStoreUnavailable, roster.ErrConstraintViolation, roster.ErrRecordNotFound} {
		if errors.Is(got, sentinel) {
			t.Fatalf("unexpected sentinel %v in %v", sentinel, got)
		}
	}
	var pqErr *pq.Error
	if !errors.As(got, &pqErr) || pqErr.Code != "42P01" {
		t.Fatalf("expected wrapped pq error, got %v", got)
	}
	if classifyError("op", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestRunTripsBreakerOnlyOnUnavailable(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(1, 0, 1)
	s := NewStore(nil, Options{Breaker: breaker})

	err := s.run("create slot assignment", func() error { return &pq.Error{Code: "23505"} })
	if !errors.Is(err, roster.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if breaker.State() != resilience.CircuitStateClosed {
		t.Fatalf("constraint errors must not open the breaker")
	}

	_ = s.run("fetch teams", func() error { return driver.ErrBadConn })
	err = s.run("fetch teams", func() error { return nil })
	if !errors.Is(err, roster.ErrStoreUnavailable) || !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected unavailable via open circuit, got %v", err)
	}
}
