// Package config loads facevec settings from an optional YAML file and
// FACEVEC_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults.
const (
	DefaultThreshold    = 0.6
	DefaultDriver       = DriverSQLite
	DefaultDSN          = "facevec.db"
	DefaultMaxOpenConns = 10
	DefaultMaxIdleConns = 2
)

type Config struct {
	Threshold float64       `yaml:"threshold"`
	Dimension int           `yaml:"dimension"` // 0 = established by the first add
	Backend   BackendConfig `yaml:"backend"`
	Log       LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"` // file path for sqlite, connection URL for postgres
	Table        string `yaml:"table"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Threshold: DefaultThreshold,
		Backend: BackendConfig{
			Driver:       DefaultDriver,
			DSN:          DefaultDSN,
			MaxOpenConns: DefaultMaxOpenConns,
			MaxIdleConns: DefaultMaxIdleConns,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then environment overrides, and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if s := os.Getenv("FACEVEC_THRESHOLD"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("FACEVEC_THRESHOLD: %w", err)
		}
		c.Threshold = v
	}
	if s := os.Getenv("FACEVEC_DIMENSION"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("FACEVEC_DIMENSION: %w", err)
		}
		c.Dimension = v
	}
	if s := os.Getenv("FACEVEC_BACKEND"); s != "" {
		c.Backend.Driver = s
	}
	if s := os.Getenv("FACEVEC_DSN"); s != "" {
		c.Backend.DSN = s
	}
	if s := os.Getenv("FACEVEC_TABLE"); s != "" {
		c.Backend.Table = s
	}
	if s := os.Getenv("FACEVEC_LOG_LEVEL"); s != "" {
		c.Log.Level = s
	}
	if s := os.Getenv("FACEVEC_LOG_FORMAT"); s != "" {
		c.Log.Format = s
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) || c.Threshold <= 0 {
		return fmt.Errorf("threshold must be a positive number, got %v", c.Threshold)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("dimension must not be negative, got %d", c.Dimension)
	}
	c.Backend.Driver = strings.ToLower(c.Backend.Driver)
	switch c.Backend.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Backend.DSN == "" {
			return fmt.Errorf("backend.dsn is required for driver %s", c.Backend.Driver)
		}
	default:
		return fmt.Errorf("unknown backend driver %q", c.Backend.Driver)
	}
	if c.Backend.MaxOpenConns < 0 || c.Backend.MaxIdleConns < 0 {
		return errors.New("backend connection limits must not be negative")
	}
	return nil
}
