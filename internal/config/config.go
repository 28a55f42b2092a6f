package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string        `env:"DRAFT_ADDR" envDefault:":8080"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	ShareDebounce    time.Duration `env:"SHARE_DEBOUNCE" envDefault:"500ms"`
	ShareCompression bool          `env:"SHARE_COMPRESSION" envDefault:"true"`
	ShareBaseURL     string        `env:"SHARE_BASE_URL" envDefault:"http://localhost:8080/"`
}

// Load reads the optional .env files, then the environment.
func Load(files ...string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ShareDebounce < 0 {
		return Config{}, fmt.Errorf("SHARE_DEBOUNCE must not be negative, got %s", cfg.ShareDebounce)
	}
	return cfg, nil
}
