// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration.
type Config struct {
	HTTPAddr    string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath      string        `env:"DB_PATH"`            // empty runs in-memory only
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxSessions int           `env:"MAX_SESSIONS" envDefault:"256"`
	TurnTime    time.Duration `env:"TURN_TIME" envDefault:"2m"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
