package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"pricecompare/internal/catalog"
)

// Config holds runtime configuration for the comparator.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:"127.0.0.1:8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"30s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	UploadMaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`

	ExportFilename string `envconfig:"EXPORT_FILENAME" default:"comparacion_precios_mejorado.xlsx"`
	ExportSheet    string `envconfig:"EXPORT_SHEET" default:"Comparacion Precios"`

	ReconcilePolicy string  `envconfig:"RECONCILE_POLICY" default:"first"`
	DefaultMarkup   float64 `envconfig:"DEFAULT_MARKUP" default:"25"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if _, err := catalog.ParseReconcile(c.ReconcilePolicy); err != nil {
		return fmt.Errorf("RECONCILE_POLICY: %w", err)
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// Reconcile returns the configured grouping policy.
func (c *Config) Reconcile() catalog.Reconcile {
	p, err := catalog.ParseReconcile(c.ReconcilePolicy)
	if err != nil {
		return catalog.ReconcileFirst
	}
	return p
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
