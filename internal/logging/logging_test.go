package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithOptionsJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOptions(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info("dropped")
	l.Warn("kept", "round", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "kept" || rec["round"] != float64(3) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewWithOptionsInvalid(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWithOptions(&buf, "loud", "text"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := NewWithOptions(&buf, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger")
	}
	l := New()
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("logger not stored in context")
	}
}
