package config

import (
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
)

// Config is the single explicit configuration object for the library. There
// is deliberately no package-level mutable state here; construct one (or
// several, in parallel tests) and hand it to the components that need it.
type Config struct {
	Metrics   MetricsConfig   `yaml:"Metrics" toml:"Metrics"`
	Logging   LoggingConfig   `yaml:"Logging" toml:"Logging"`
	Health    HealthConfig    `yaml:"Health" toml:"Health"`
	Reporters ReportersConfig `yaml:"Reporters" toml:"Reporters"`
}

// MetricsConfig controls the statistical core. Enabled is the process-wide
// disablement switch: when false, registries hand out null instruments and
// recording becomes a no-op without any change to instrumented code.
type MetricsConfig struct {
	Enabled bool `yaml:"Enabled" toml:"Enabled" default:"true"`

	// ReservoirSize and DecayAlpha are the defaults for histograms built by
	// a registry; 1028 samples at alpha 0.015 gives a 99.9% confidence
	// 5%-error view biased toward the last five minutes of data.
	ReservoirSize int     `yaml:"ReservoirSize" toml:"ReservoirSize" default:"1028" validate:"gte=1"`
	DecayAlpha    float64 `yaml:"DecayAlpha" toml:"DecayAlpha" default:"0.015"`

	// RescaleInterval bounds the magnitude of stored priorities by
	// periodically moving the decay landmark forward.
	RescaleInterval Duration `yaml:"RescaleInterval" toml:"RescaleInterval" default:"1h"`

	// TickInterval is the cadence at which meters fold their accumulated
	// counts into the moving rates.
	TickInterval Duration `yaml:"TickInterval" toml:"TickInterval" default:"5s"`
}

type LoggingConfig struct {
	Level Level `yaml:"Level" toml:"Level" default:"warn"`
}

type HealthConfig struct {
	// Interval is how often registered health checks are surveyed.
	Interval Duration `yaml:"Interval" toml:"Interval" default:"500ms"`
}

type ReportersConfig struct {
	Log        LogReporterConfig  `yaml:"Log" toml:"Log"`
	CSV        CSVReporterConfig  `yaml:"CSV" toml:"CSV"`
	Prometheus PrometheusConfig   `yaml:"Prometheus" toml:"Prometheus"`
	OTel       OTelReporterConfig `yaml:"OTel" toml:"OTel"`
}

type LogReporterConfig struct {
	Enabled  bool     `yaml:"Enabled" toml:"Enabled"`
	Interval Duration `yaml:"Interval" toml:"Interval" default:"1m"`
}

type CSVReporterConfig struct {
	Enabled   bool     `yaml:"Enabled" toml:"Enabled"`
	Directory string   `yaml:"Directory" toml:"Directory" default:"."`
	Interval  Duration `yaml:"Interval" toml:"Interval" default:"1m"`
}

type PrometheusConfig struct {
	Enabled    bool   `yaml:"Enabled" toml:"Enabled"`
	ListenAddr string `yaml:"ListenAddr" toml:"ListenAddr" default:"localhost:2112"`
}

type OTelReporterConfig struct {
	Enabled  bool              `yaml:"Enabled" toml:"Enabled"`
	Endpoint string            `yaml:"Endpoint" toml:"Endpoint" default:"http://localhost:4318"`
	Headers  map[string]string `yaml:"Headers" toml:"Headers"`
	Interval Duration          `yaml:"Interval" toml:"Interval" default:"1m"`
}

// Default returns a Config with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	// defaults.Set only errors on non-pointer input
	_ = defaults.Set(cfg)
	return cfg
}

// NewConfig loads configuration from the named locations, in order, applying
// defaults first so that absent keys keep their documented values. Passing no
// locations returns the defaults.
func NewConfig(locations ...string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "applying config defaults")
	}
	if err := loadInto(cfg, locations); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the handful of constraints that can't be expressed by
// defaulting alone. It fails fast so a component is never half-constructed
// from a bad config.
func (c *Config) Validate() error {
	if c.Metrics.ReservoirSize < 1 {
		return errors.Errorf("Metrics.ReservoirSize must be at least 1, got %d", c.Metrics.ReservoirSize)
	}
	if c.Metrics.RescaleInterval <= 0 {
		return errors.Errorf("Metrics.RescaleInterval must be positive, got %s", c.Metrics.RescaleInterval)
	}
	if c.Metrics.TickInterval <= 0 {
		return errors.Errorf("Metrics.TickInterval must be positive, got %s", c.Metrics.TickInterval)
	}
	if c.Health.Interval <= 0 {
		return errors.Errorf("Health.Interval must be positive, got %s", c.Health.Interval)
	}
	for name, iv := range map[string]Duration{
		"Reporters.Log.Interval":  c.Reporters.Log.Interval,
		"Reporters.CSV.Interval":  c.Reporters.CSV.Interval,
		"Reporters.OTel.Interval": c.Reporters.OTel.Interval,
	} {
		if iv <= 0 {
			return errors.Errorf("%s must be positive, got %s", name, iv)
		}
	}
	return nil
}
