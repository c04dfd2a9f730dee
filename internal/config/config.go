// Package config loads the server's settings from the process environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/bloggu/internal/db"
)

// Config holds server configuration.
type Config struct {
	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAlgorithm string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	TokenTTL     time.Duration `env:"BLOGGU_TOKEN_TTL" envDefault:"0s"`

	Database string `env:"BLOGGU_DATABASE"`
	Addr     string `env:"BLOGGU_ADDR" envDefault:":8080"`
	DevMode  bool   `env:"BLOGGU_DEV_MODE"`

	RedisURL         string        `env:"BLOGGU_REDIS_URL"`
	LoginMaxFailures int           `env:"BLOGGU_LOGIN_MAX_FAILURES" envDefault:"10"`
	LoginWindow      time.Duration `env:"BLOGGU_LOGIN_WINDOW" envDefault:"1m"`
	BcryptCost       int           `env:"BLOGGU_BCRYPT_COST" envDefault:"10"`
}

// Load reads configuration from the environment. It fails when JWT_SECRET is unset.
func Load() (Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database == "" {
		path, err := db.DefaultPath()
		if err != nil {
			return Config{}, err
		}
		cfg.Database = path
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM %q is not supported (use HS256, HS384 or HS512)", c.JWTAlgorithm)
	}
	if c.TokenTTL < 0 {
		return errors.New("BLOGGU_TOKEN_TTL must not be negative")
	}
	if c.LoginMaxFailures < 1 {
		return errors.New("BLOGGU_LOGIN_MAX_FAILURES must be at least 1")
	}
	if c.LoginWindow <= 0 {
		return errors.New("BLOGGU_LOGIN_WINDOW must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BLOGGU_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
