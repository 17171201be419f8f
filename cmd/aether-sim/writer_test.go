package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"aether-sim/internal/config"
	"aether-sim/internal/sim"
	"aether-sim/internal/telemetry"
)

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	prev := isTerminal
	isTerminal = func() bool { return tty }
	t.Cleanup(func() { isTerminal = prev })
}

func TestNewWritersJSON(t *testing.T) {
	w, cleanup, err := newWriters(config.Default(), "json", "", false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersAutoDetectsTerminal(t *testing.T) {
	withTerminal(t, true)
	w, cleanup, err := newWriters(config.Default(), "auto", "", false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", w)
	}

	withTerminal(t, false)
	w, cleanup, err = newWriters(config.Default(), "", "", false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersUnknownOutput(t *testing.T) {
	if _, _, err := newWriters(config.Default(), "xml", "", false); err == nil {
		t.Fatalf("expected error for unknown output")
	}
}

func TestNewWritersGreptimeRequiresEndpoint(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	if _, _, err := newWriters(config.Default(), "json", "", true); err == nil {
		t.Fatalf("expected error without GREPTIMEDB_ENDPOINT")
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decisions.log")
	w, cleanup, err := newWriters(config.Default(), "json", path, false)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	mw, ok := w.(*sim.MultiWriter)
	if !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	row := telemetry.DecisionRow{RunID: "r1", ClusterID: 1, Round: 1, Mode: "direct", Timestamp: time.Now()}
	if err := mw.WriteDecision(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	sum := telemetry.RoundSummaryRow{RunID: "r1", Round: 1, Clusters: 1, DirectCount: 1, Timestamp: time.Now()}
	if err := mw.WriteSummary(sum); err != nil {
		t.Fatalf("write summary failed: %v", err)
	}
	cleanup()

	for _, p := range []string{path, path + ".summary"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s failed: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestResolveScenario(t *testing.T) {
	sc, err := resolveScenario("grid")
	if err != nil {
		t.Fatalf("resolve built-in: %v", err)
	}
	if sc.Name != "grid" {
		t.Fatalf("unexpected scenario %s", sc.Name)
	}
	if _, err := resolveScenario(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing scenario file")
	}
}
