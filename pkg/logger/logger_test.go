package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("parse log line %q: %v", line, err)
	}
	return entry
}

func TestInfoIncludesServiceName(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "teehouse-test", Output: &buf})

	logg.Info(context.Background(), "order created")

	entry := decodeLine(t, &buf)
	if entry["service"] != "teehouse-test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["message"] != "order created" {
		t.Fatalf("unexpected message %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Fatalf("unexpected level %v", entry["level"])
	}
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "teehouse-test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithOrderID(ctx, "ord-456")
	ctx = logg.WithFields(ctx, map[string]any{"attempt": 2})
	logg.Info(ctx, "retrying payment")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id, got %v", entry["request_id"])
	}
	if entry["order_id"] != "ord-456" {
		t.Fatalf("expected order_id, got %v", entry["order_id"])
	}
	if entry["attempt"] != float64(2) {
		t.Fatalf("expected attempt field, got %v", entry["attempt"])
	}
}

func TestErrorIncludesErrAndStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "teehouse-test", Output: &buf})

	logg.Error(context.Background(), "reserve failed", errors.New("connection reset"))

	entry := decodeLine(t, &buf)
	if entry["error"] != "connection reset" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
	if stack, _ := entry["stack"].(string); stack == "" {
		t.Fatal("expected stack trace on error logs")
	}
}

func TestWarnStackToggle(t *testing.T) {
	var withStack bytes.Buffer
	logg := New(Options{ServiceName: "teehouse-test", WarnStack: true, Output: &withStack})
	logg.Warn(context.Background(), "slow gateway")
	if entry := decodeLine(t, &withStack); entry["stack"] == nil {
		t.Fatal("expected stack on warn when enabled")
	}

	var without bytes.Buffer
	logg = New(Options{ServiceName: "teehouse-test", Output: &without})
	logg.Warn(context.Background(), "slow gateway")
	if entry := decodeLine(t, &without); entry["stack"] != nil {
		t.Fatal("expected no stack on warn by default")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "teehouse-test", Level: zerolog.WarnLevel, Output: &buf})

	logg.Info(context.Background(), "suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	logg.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("warn should pass at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
