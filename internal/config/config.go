// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aether-sim/internal/cas"
	"aether-sim/internal/energy"
	"aether-sim/internal/fairness"
	"aether-sim/internal/gateway"
	"aether-sim/internal/linkstate"
	"aether-sim/internal/skeleton"
)

// ErrUnknownProfile is returned when the configured hardware profile does not exist.
var ErrUnknownProfile = errors.New("config: unknown hardware profile")

// EnvironmentConfig sets the ambient conditions used to price transmissions.
type EnvironmentConfig struct {
	TempC    float64 `yaml:"temp_c"`
	Humidity float64 `yaml:"humidity"`
}

// LinkStateConfig sizes link histories and weights the LQI blend.
type LinkStateConfig struct {
	Window int     `yaml:"window"`
	WPDR   float64 `yaml:"w_pdr"`
	WRSSI  float64 `yaml:"w_rssi"`
}

// FairnessConfig controls the member-energy fairness feature and CH duty penalty.
type FairnessConfig struct {
	Enabled     bool    `yaml:"enabled"`
	TargetRatio float64 `yaml:"target_ratio"`
}

// CASConfig toggles the mode selector; disabled clusters always use Direct.
type CASConfig struct {
	Enabled    bool `yaml:"enabled"`
	cas.Config `yaml:",inline"`
}

// GatewayConfig toggles gateway selection.
type GatewayConfig struct {
	Enabled        bool `yaml:"enabled"`
	gateway.Config `yaml:",inline"`
}

// SkeletonConfig toggles backbone selection. The backbone is only built when the
// share of heads at or beyond the FarQuantile distance reaches FarRatioGate.
type SkeletonConfig struct {
	Enabled         bool    `yaml:"enabled"`
	FarRatioGate    float64 `yaml:"far_ratio_gate"`
	FarQuantile     float64 `yaml:"far_quantile"`
	skeleton.Config `yaml:",inline"`
}

// SafetyConfig forces Direct transmission after ConsecutiveRounds rounds whose
// end-to-end delivery ratio fell below Theta, optionally raising transmit power.
type SafetyConfig struct {
	Enabled           bool    `yaml:"enabled"`
	ConsecutiveRounds int     `yaml:"consecutive_rounds"`
	Theta             float64 `yaml:"theta"`
	PowerBump         bool    `yaml:"power_bump"`
	PowerBumpDeltaDBm float64 `yaml:"power_bump_delta_dbm"`
}

// Config is the root configuration of the decision engine.
type Config struct {
	Profile         string            `yaml:"profile"`
	PacketSizeBytes int               `yaml:"packet_size_bytes"`
	TxPowerDBm      float64           `yaml:"tx_power_dbm"`
	Environment     EnvironmentConfig `yaml:"environment"`
	LinkState       LinkStateConfig   `yaml:"link_state"`
	Fairness        FairnessConfig    `yaml:"fairness"`
	CAS             CASConfig         `yaml:"cas"`
	Gateway         GatewayConfig     `yaml:"gateway"`
	Skeleton        SkeletonConfig    `yaml:"skeleton"`
	Safety          SafetyConfig      `yaml:"safety"`
}

// Default returns the documented defaults for every component.
func Default() *Config {
	sk := skeleton.DefaultConfig()
	sk.K = 2
	return &Config{
		Profile:         energy.ProfileCC2420TelosB,
		PacketSizeBytes: 1024,
		TxPowerDBm:      energy.DefaultTxPowerDBm,
		Environment: EnvironmentConfig{
			TempC:    energy.DefaultTempC,
			Humidity: energy.DefaultHumidity,
		},
		LinkState: LinkStateConfig{
			Window: linkstate.DefaultWindow,
			WPDR:   linkstate.DefaultPDRWeight,
			WRSSI:  linkstate.DefaultRSSIWeight,
		},
		Fairness: FairnessConfig{Enabled: true, TargetRatio: fairness.DefaultTargetRatio},
		CAS:      CASConfig{Enabled: true, Config: cas.DefaultConfig()},
		Gateway:  GatewayConfig{Enabled: true, Config: gateway.DefaultConfig()},
		Skeleton: SkeletonConfig{
			Enabled:      true,
			FarRatioGate: 0.3,
			FarQuantile:  0.7,
			Config:       sk,
		},
		Safety: SafetyConfig{
			Enabled:           true,
			ConsecutiveRounds: 1,
			Theta:             0.1,
			PowerBumpDeltaDBm: 2.0,
		},
	}
}

// Load validates the YAML file against the embedded CUE schema and overlays it on Default.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := ValidateWithCue(configPath, data); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if env := os.Getenv("AETHER_PROFILE"); env != "" {
		cfg.Profile = env
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	if _, err := energy.ProfileByName(c.Profile); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, c.Profile)
	}
	if c.PacketSizeBytes <= 0 {
		return fmt.Errorf("config: packet_size_bytes must be positive, got %d", c.PacketSizeBytes)
	}
	return nil
}

// HardwareProfile resolves the configured hardware profile.
func (c *Config) HardwareProfile() (energy.HardwareProfile, error) {
	p, err := energy.ProfileByName(c.Profile)
	if err != nil {
		return energy.HardwareProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, c.Profile)
	}
	return p, nil
}

// PacketBits returns the configured packet size in bits.
func (c *Config) PacketBits() float64 {
	return float64(c.PacketSizeBytes * 8)
}
