// Package config holds the env-driven settings of every binary.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSessionSecret = 32

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

type Catalog struct {
	Port         string `env:"PORT" envDefault:"8082"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SeedDemo     bool   `env:"CATALOG_SEED_DEMO" envDefault:"true"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsToken string `env:"METRICS_TOKEN"`
}

type Storefront struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	CatalogURL         string        `env:"CATALOG_URL" envDefault:"http://localhost:8082"`
	SessionSecret      string        `env:"SESSION_SECRET,required"`
	StorageURL         string        `env:"STORAGE_URL" envDefault:"memory://"`
	APITimeout         time.Duration `env:"API_TIMEOUT" envDefault:"3s"`
	MutationsPerMinute int           `env:"CART_MUTATIONS_PER_MINUTE" envDefault:"120"`
	SessionsPerMinute  int           `env:"SESSIONS_PER_MINUTE" envDefault:"30"`
	CartIdleTTL        time.Duration `env:"CART_IDLE_TTL" envDefault:"30m"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	MetricsToken       string        `env:"METRICS_TOKEN"`
}

// CLI carries the defaults for cartctl flags.
type CLI struct {
	API     string        `env:"ROCKETSHOES_API" envDefault:"http://localhost:8082"`
	Storage string        `env:"ROCKETSHOES_STORAGE"`
	Timeout time.Duration `env:"ROCKETSHOES_TIMEOUT" envDefault:"3s"`
}

func LoadCatalog() (Catalog, error) {
	var c Catalog
	if err := ParseEnv(&c); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func LoadStorefront() (Storefront, error) {
	var c Storefront
	if err := ParseEnv(&c); err != nil {
		return Storefront{}, err
	}
	if len(c.SessionSecret) < minSessionSecret {
		return Storefront{}, fmt.Errorf("SESSION_SECRET must be at least %d chars", minSessionSecret)
	}
	if c.MutationsPerMinute <= 0 {
		return Storefront{}, errors.New("CART_MUTATIONS_PER_MINUTE must be positive")
	}
	if c.SessionsPerMinute <= 0 {
		return Storefront{}, errors.New("SESSIONS_PER_MINUTE must be positive")
	}
	return c, nil
}

func LoadCLI() (CLI, error) {
	var c CLI
	if err := ParseEnv(&c); err != nil {
		return CLI{}, err
	}
	return c, nil
}
