package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aether-sim/internal/telemetry"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	t.Setenv("PROMETHEUS_DATASOURCE_UID", "")
	if err := Render(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")
	t.Setenv("PROMETHEUS_DATASOURCE_UID", "uid2")

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "aether-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !json.Valid(b) {
		t.Fatalf("rendered dashboard is not valid JSON")
	}
	s := string(b)
	if !strings.Contains(s, "uid1") || !strings.Contains(s, "uid2") {
		t.Fatalf("datasource uids not rendered")
	}
	if !strings.Contains(s, telemetry.SummaryTableName) || !strings.Contains(s, telemetry.DecisionTableName) {
		t.Fatalf("table names not rendered")
	}
}
