// Package config reads server settings from the process environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	Port          int
	AppEnv        string
	Store         string
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string
	Secret        string
	// TokenTTL of zero issues tokens without an expiry claim.
	TokenTTL time.Duration
	LogLevel string
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is reported as os.ErrNotExist.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return godotenv.Load(path)
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          3001,
		AppEnv:        os.Getenv("APP_ENV"),
		Store:         getenv("STORE", StoreMongo),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getenv("MONGODB_DB", "noteApp"),
		MySQLDSN:      os.Getenv("MYSQL_DSN"),
		Secret:        os.Getenv("SECRET"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}

	if cfg.AppEnv == "test" {
		cfg.MongoURI = os.Getenv("TEST_MONGODB_URI")
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		if ttl < 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: must not be negative", v)
		}
		cfg.TokenTTL = ttl
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return errors.New("SECRET must be set")
	}
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			if c.AppEnv == "test" {
				return errors.New("TEST_MONGODB_URI must be set when STORE=mongo and APP_ENV=test")
			}
			return errors.New("MONGODB_URI must be set when STORE=mongo")
		}
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN must be set when STORE=mysql")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
