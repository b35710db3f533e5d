package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}

func TestLoggerWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).Named("sync")

	logger.Debug("hidden")
	logger.Warn("commit failed", "team_id", "t1", "error", errors.New("boom"), "dangling")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered: %s", out)
	}
	for _, want := range []string{`"msg":"commit failed"`, `"component":"sync"`, `"team_id":"t1"`, `"error":"boom"`, `"dangling":null`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewJSONWriter(&buf, LevelInfo))
	t.Cleanup(func() { SetDefault(nil) })

	var logger *Logger
	logger.Info("from nil")
	if !strings.Contains(buf.String(), "from nil") {
		t.Fatalf("expected default logger output, got %q", buf.String())
	}
}

func TestMirrorReceivesBoundFields(t *testing.T) {
	type entry struct {
		level Level
		msg   string
		args  []any
	}
	var got []entry
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, entry{level: level, msg: msg, args: args})
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger := NewJSONWriter(io.Discard, LevelInfo).Named("sync")
	logger.Debug("filtered")
	logger.WarnContext(context.Background(), "reload failed", "team_id", "t1")

	if len(got) != 1 {
		t.Fatalf("expected one mirrored entry, got %d", len(got))
	}
	if got[0].level != LevelWarn || got[0].msg != "reload failed" {
		t.Fatalf("unexpected entry %+v", got[0])
	}
	want := []any{"component", "sync", "team_id", "t1"}
	if len(got[0].args) != len(want) {
		t.Fatalf("unexpected args %v", got[0].args)
	}
	for i := range want {
		if got[0].args[i] != want[i] {
			t.Fatalf("unexpected args %v", got[0].args)
		}
	}

	SetMirror(nil)
	logger.Error("after removal")
	if len(got) != 1 {
		t.Fatalf("mirror should be removed")
	}
}
