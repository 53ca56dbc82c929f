// Package config loads process settings from GREENSCREEN_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name.
const Prefix = "GREENSCREEN"

// Config holds all process configuration.
type Config struct {
	Host    HostConfig
	Results ResultsConfig
	Log     LogConfig
}

// HostConfig drives the simulator.
type HostConfig struct {
	Listen      string        `envconfig:"LISTEN" default:":3270"`
	Admin       string        `envconfig:"ADMIN" default:""`
	Catalog     string        `envconfig:"CATALOG" default:"screens"`
	Navigation  string        `envconfig:"NAVIGATION" default:"navigation.yaml"`
	AcceptRate  float64       `envconfig:"ACCEPT_RATE" default:"0"`
	AcceptBurst int           `envconfig:"ACCEPT_BURST" default:"10"`
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT" default:"15m"`
	MaxSessions int           `envconfig:"MAX_SESSIONS" default:"0"`
	TLSCert     string        `envconfig:"TLS_CERT"`
	TLSKey      string        `envconfig:"TLS_KEY"`
}

// ResultsConfig selects where workflow results are kept.
type ResultsConfig struct {
	Store         string        `envconfig:"RESULTS" default:""`
	TTL           time.Duration `envconfig:"RESULT_TTL" default:"0"`
	Mask          []string      `envconfig:"RESULT_MASK"`
	EncryptionKey string        `envconfig:"RESULT_KEY"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	JSON  bool   `envconfig:"LOG_JSON" default:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	for name, target := range map[string]any{"host": &cfg.Host, "results": &cfg.Results, "log": &cfg.Log} {
		if err := envconfig.Process(Prefix, target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *HostConfig) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("%s_TLS_CERT and %s_TLS_KEY must be set together", Prefix, Prefix)
	}
	if c.AcceptRate < 0 || c.AcceptBurst < 0 || c.MaxSessions < 0 {
		return fmt.Errorf("rate, burst and session limits must not be negative")
	}
	return nil
}
