package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"INFO"`
	JWTSecret      string `env:"JWT_SECRET"`
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"qnachat.db"`
	DataDir        string `env:"DATA_DIR" envDefault:"data"`
	QnAPath        string `env:"QNA_PATH" envDefault:""`
}

// Load reads configuration from a .env file (if present) and the
// environment. JWT_SECRET has no usable default and must be set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch cfg.StorageBackend {
	case "sqlite", "file":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected \"sqlite\" or \"file\")", cfg.StorageBackend)
	}

	return &cfg, nil
}
