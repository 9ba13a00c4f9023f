// Package config loads process configuration from SLOGGER_-prefixed
// environment variables. This is distinct from the config document
// (internal/configfile), which holds API keys and time paths.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the process configuration.
type Config struct {
	Env                    string `koanf:"env"`
	Port                   string `koanf:"port" validate:"required"`
	DatabaseURL            string `koanf:"database_url" validate:"required"`
	ConfigPath             string `koanf:"config_path" validate:"required"`
	RequestTimeout         int    `koanf:"request_timeout" validate:"gt=0"` // seconds
	PartitionDaysAhead     int    `koanf:"partition_days_ahead" validate:"gte=0"`
	PartitionSweepInterval string `koanf:"partition_sweep_interval"`
	NewRelicLicenseKey     string `koanf:"newrelic_license_key"`
}

// defaults applied before the environment is read.
func defaults() *Config {
	return &Config{
		Env:                    "development",
		Port:                   "8080",
		ConfigPath:             "config.json",
		RequestTimeout:         30,
		PartitionDaysAhead:     7,
		PartitionSweepInterval: "6h",
	}
}

// Load reads SLOGGER_* environment variables into a validated Config.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider("SLOGGER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SLOGGER_"))
	}), nil)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SweepInterval parses the partition sweep interval, defaulting to 6 hours
// when unset or unparsable.
func (c *Config) SweepInterval() time.Duration {
	if d, err := time.ParseDuration(c.PartitionSweepInterval); err == nil && d > 0 {
		return d
	}
	return 6 * time.Hour
}
