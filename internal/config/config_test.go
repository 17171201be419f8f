package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aether.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
profile: esp32_lora
packet_size_bytes: 256
cas:
  lambda_uncertainty: 0.5
  direct:
    link: 0.8
gateway:
  k: 3
skeleton:
  enabled: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Profile != "esp32_lora" || cfg.PacketSizeBytes != 256 {
		t.Errorf("unexpected top-level values: %+v", cfg)
	}
	if cfg.CAS.LambdaUncertainty != 0.5 || cfg.CAS.Direct.Link != 0.8 {
		t.Errorf("cas overrides not applied: %+v", cfg.CAS.Config)
	}
	if cfg.CAS.Direct.Energy != 0.6 || cfg.CAS.EMAAlpha != 0.2 {
		t.Errorf("cas defaults lost: %+v", cfg.CAS.Config)
	}
	if cfg.Gateway.K != 3 || !cfg.Gateway.Enabled {
		t.Errorf("gateway section wrong: %+v", cfg.Gateway)
	}
	if cfg.Skeleton.Enabled || cfg.Skeleton.QFar != 0.75 {
		t.Errorf("skeleton section wrong: %+v", cfg.Skeleton)
	}
	if cfg.PacketBits() != 2048 {
		t.Errorf("packet bits = %v", cfg.PacketBits())
	}
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	cases := map[string]string{
		"unknown profile": "profile: mica2\n",
		"bad humidity":    "environment:\n  humidity: 3\n",
		"unknown field":   "cas:\n  alpha: 0.3\n",
		"bad window":      "link_state:\n  window: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfig_EnvProfileOverride(t *testing.T) {
	t.Setenv("AETHER_PROFILE", "cc2650_sensortag")
	cfg, err := Load(writeConfig(t, "profile: generic_wsn\n"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Profile != "cc2650_sensortag" {
		t.Fatalf("expected env override, got %s", cfg.Profile)
	}

	t.Setenv("AETHER_PROFILE", "bogus")
	if _, err := Load(writeConfig(t, "{}\n")); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	p, err := cfg.HardwareProfile()
	if err != nil || p.Name != "cc2420_telosb" {
		t.Fatalf("unexpected default profile %v (%v)", p.Name, err)
	}
	if !cfg.Safety.Enabled || cfg.Safety.ConsecutiveRounds != 1 {
		t.Fatalf("unexpected safety defaults: %+v", cfg.Safety)
	}
}

func TestLoadConfig_ShippedSample(t *testing.T) {
	cfg, err := Load("../../config/aether.yaml")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Safety.ConsecutiveRounds != 2 || cfg.Safety.Theta != 0.7 || !cfg.Safety.PowerBump {
		t.Errorf("safety section wrong: %+v", cfg.Safety)
	}
	if cfg.Environment.TempC != 30 {
		t.Errorf("environment not applied: %+v", cfg.Environment)
	}
}
