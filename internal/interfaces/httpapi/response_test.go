package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_StatusTable(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{name: "invalid input", err: usecase.ErrInvalidInput, status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "invalid score", err: fmt.Errorf("parse: %w", roster.ErrInvalidScore), status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, status: http.StatusUnauthorized, reason: "unauthorized"},
		{name: "not found", err: usecase.ErrNotFound, status: http.StatusNotFound, reason: "notFound"},
		{name: "record not found", err: roster.ErrRecordNotFound, status: http.StatusNotFound, reason: "notFound"},
		{name: "missing reference", err: usecase.ErrMissingReference, status: http.StatusConflict, reason: "missingReference"},
		{name: "constraint", err: roster.ErrConstraintViolation, status: http.StatusConflict, reason: "conflict"},
		{name: "swap", err: roster.ErrIrreconcilableSwap, status: http.StatusConflict, reason: "conflict"},
		{name: "store down", err: fmt.Errorf("fetch: %w", roster.ErrStoreUnavailable), status: http.StatusServiceUnavailable},
		{name: "closed", err: usecase.ErrClosed, status: http.StatusServiceUnavailable},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), tt.err)
			if got.HTTPStatus != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, got.HTTPStatus)
			}
			if tt.reason != "" && got.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got.Reason)
			}
		})
	}
}
