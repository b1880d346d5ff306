package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	// OutDir is where downloaded files land. Created if absent and
	// resolved to an absolute, symlink-free path before any worker starts.
	OutDir string `envconfig:"OUT_DIR" default:"./out"`

	// MaxConcurrent bounds simultaneously running transfers.
	// 0 means unbounded, which is the default behavior.
	MaxConcurrent int64 `envconfig:"MAX_CONCURRENT" default:"0"`

	// ProgressInterval is the period between progress log lines per
	// download.
	ProgressInterval time.Duration `envconfig:"PROGRESS_INTERVAL" default:"1s"`

	// HTTPTimeout applies to a whole GET including the body read.
	// 0 disables the timeout; a hung transfer then blocks its worker
	// until cancellation.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"0"`

	// StatusAddr, when set, enables the read-only status/metrics HTTP
	// server on that address (e.g. ":8080"). Off by default.
	StatusAddr string `envconfig:"STATUS_ADDR" default:""`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max concurrent downloads cannot be negative: %d", c.MaxConcurrent)
	}

	if c.ProgressInterval <= 0 {
		return fmt.Errorf("progress interval must be positive: %s", c.ProgressInterval)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout cannot be negative: %s", c.HTTPTimeout)
	}

	return nil
}
