package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Workshop   WorkshopConfig
	Logging    LogConfig
	Metrics    MetricsConfig
	Simulation SimulationConfig
}

// WorkshopConfig holds pipeline configuration.
type WorkshopConfig struct {
	Workers         int           `envconfig:"WORKERS" default:"4"`
	StallWarning    time.Duration `envconfig:"COVERAGE_STALL_WARNING" default:"5s"`
	BreakerFailures uint32        `envconfig:"SOLVER_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"SOLVER_BREAKER_TIMEOUT" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the stats/metrics HTTP endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Host    string `envconfig:"METRICS_HOST" default:"127.0.0.1"`
	Port    string `envconfig:"METRICS_PORT" default:"9090"`
}

// SimulationConfig holds reference supplier/customer configuration.
type SimulationConfig struct {
	SupplierDelay time.Duration `envconfig:"SUPPLIER_DELAY" default:"0s"`
	DemandRPS     float64       `envconfig:"DEMAND_RPS" default:"0"`
	DemandBurst   int           `envconfig:"DEMAND_BURST" default:"1"`
}

// Addr returns the listen address of the metrics endpoint.
func (m MetricsConfig) Addr() string {
	return m.Host + ":" + m.Port
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the workshop cannot run with.
func (c *Config) Validate() error {
	if c.Workshop.Workers < 1 {
		return fmt.Errorf("invalid config: WORKERS must be at least 1, got %d", c.Workshop.Workers)
	}
	if c.Simulation.DemandRPS < 0 {
		return fmt.Errorf("invalid config: DEMAND_RPS must not be negative, got %g", c.Simulation.DemandRPS)
	}
	if c.Simulation.DemandBurst < 1 {
		return fmt.Errorf("invalid config: DEMAND_BURST must be at least 1, got %d", c.Simulation.DemandBurst)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Workshop: WorkshopConfig{
			Workers:         4,
			StallWarning:    5 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    "9090",
		},
		Simulation: SimulationConfig{
			SupplierDelay: 0,
			DemandRPS:     0,
			DemandBurst:   1,
		},
	}
}
