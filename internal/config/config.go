// Package config loads solver settings.
//
// Settings are resolved in increasing priority: built-in defaults, an
// optional YAML file, SLOTFD_* environment variables and finally command
// line flags, which the CLI applies on top of the loaded Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// Config holds every tunable of a solve run.
type Config struct {
	Strategy              string        `yaml:"strategy"`
	Residual              string        `yaml:"residual"`
	QueryMode             string        `yaml:"query_mode"`
	Order                 string        `yaml:"order"`
	HallMaxItems          int           `yaml:"hall_max_items"`
	StepBudget            int64         `yaml:"step_budget"`
	Timeout               time.Duration `yaml:"timeout"`
	AllowUnderconstrained bool          `yaml:"allow_underconstrained"`
	Workers               int           `yaml:"workers"`
}

// envOverrides mirrors Config for the environment. Every field is a string
// so that an unset variable can be told apart from a zero value.
type envOverrides struct {
	Strategy              string `env:"SLOTFD_STRATEGY"`
	Residual              string `env:"SLOTFD_RESIDUAL"`
	QueryMode             string `env:"SLOTFD_QUERY_MODE"`
	Order                 string `env:"SLOTFD_ORDER"`
	HallMaxItems          string `env:"SLOTFD_HALL_MAX_ITEMS"`
	StepBudget            string `env:"SLOTFD_STEP_BUDGET"`
	Timeout               string `env:"SLOTFD_TIMEOUT"`
	AllowUnderconstrained string `env:"SLOTFD_ALLOW_UNDERCONSTRAINED"`
	Workers               string `env:"SLOTFD_WORKERS"`
}

// Default returns the built-in settings.
func Default() *Config {
	sc := slotfd.DefaultSolverConfig()
	return &Config{
		Strategy:     sc.Strategy,
		Residual:     sc.Residual.String(),
		QueryMode:    sc.QueryMode.String(),
		Order:        sc.Order.String(),
		HallMaxItems: sc.HallMaxItems,
		Workers:      runtime.NumCPU(),
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides every setting whose SLOTFD_* variable is set.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Strategy != "" {
		c.Strategy = env.Strategy
	}
	if env.Residual != "" {
		c.Residual = env.Residual
	}
	if env.QueryMode != "" {
		c.QueryMode = env.QueryMode
	}
	if env.Order != "" {
		c.Order = env.Order
	}
	if env.HallMaxItems != "" {
		n, err := strconv.Atoi(env.HallMaxItems)
		if err != nil {
			return fmt.Errorf("SLOTFD_HALL_MAX_ITEMS: %w", err)
		}
		c.HallMaxItems = n
	}
	if env.StepBudget != "" {
		n, err := strconv.ParseInt(env.StepBudget, 10, 64)
		if err != nil {
			return fmt.Errorf("SLOTFD_STEP_BUDGET: %w", err)
		}
		c.StepBudget = n
	}
	if env.Timeout != "" {
		d, err := time.ParseDuration(env.Timeout)
		if err != nil {
			return fmt.Errorf("SLOTFD_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if env.AllowUnderconstrained != "" {
		b, err := strconv.ParseBool(env.AllowUnderconstrained)
		if err != nil {
			return fmt.Errorf("SLOTFD_ALLOW_UNDERCONSTRAINED: %w", err)
		}
		c.AllowUnderconstrained = b
	}
	if env.Workers != "" {
		n, err := strconv.Atoi(env.Workers)
		if err != nil {
			return fmt.Errorf("SLOTFD_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

// Validate rejects unknown names and out-of-range numbers.
func (c *Config) Validate() error {
	_, err := c.ToSolverConfig()
	return err
}

// ToSolverConfig converts the settings into the library configuration.
func (c *Config) ToSolverConfig() (*slotfd.SolverConfig, error) {
	if _, err := slotfd.NewStrategy(c.Strategy, nil, nil, nil); err != nil {
		return nil, err
	}
	residual, err := slotfd.ParseResidualPolicy(c.Residual)
	if err != nil {
		return nil, err
	}
	mode, err := slotfd.ParseQueryMode(c.QueryMode)
	if err != nil {
		return nil, err
	}
	order, err := slotfd.ParseEnumerationOrder(c.Order)
	if err != nil {
		return nil, err
	}

	switch {
	case c.HallMaxItems < 0:
		return nil, fmt.Errorf("hall_max_items must be non-negative, got %d", c.HallMaxItems)
	case c.StepBudget < 0:
		return nil, fmt.Errorf("step_budget must be non-negative, got %d", c.StepBudget)
	case c.Timeout < 0:
		return nil, fmt.Errorf("timeout must be non-negative, got %s", c.Timeout)
	case c.Workers < 1:
		return nil, fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	return &slotfd.SolverConfig{
		Strategy:              c.Strategy,
		Residual:              residual,
		QueryMode:             mode,
		Order:                 order,
		HallMaxItems:          c.HallMaxItems,
		StepBudget:            c.StepBudget,
		Timeout:               c.Timeout,
		AllowUnderconstrained: c.AllowUnderconstrained,
	}, nil
}
