// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs at startup.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `env:"AETHEL_DB_PATH" envDefault:"data/aethel.db"`
	// Port is the HTTP listen port.
	Port int `env:"AETHEL_PORT" envDefault:"8080"`
	// AdminKey is the bearer token for admin endpoints. Empty disables them.
	AdminKey string `env:"AETHEL_ADMIN_KEY"`
	// DiceSeed seeds the action roll source. Zero picks a random seed.
	DiceSeed uint64 `env:"AETHEL_DICE_SEED" envDefault:"0"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
