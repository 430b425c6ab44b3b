package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Load reads a YAML file over Default() and applies environment overrides.
// An empty path loads the defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// REDIS_ADDR and MYSQL_DSN are the variables the storage tests already use.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RECONCILER_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}
	if v := os.Getenv("RECONCILER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis.addr is required for the redis backend", ErrInvalidConfig)
		}
	case BackendMySQL:
		dsn, err := mysql.ParseDSN(c.MySQL.DSN)
		if err != nil {
			return fmt.Errorf("%w: mysql.dsn: %v", ErrInvalidConfig, err)
		}
		if !dsn.ParseTime {
			dsn.ParseTime = true
			c.MySQL.DSN = dsn.FormatDSN()
		}
	case BackendFile:
		if c.File.Path == "" {
			return fmt.Errorf("%w: file.path is required for the file backend", ErrInvalidConfig)
		}
	}

	for _, name := range c.Stores {
		if name == c.Catalog.Products || name == c.Catalog.Artists {
			return fmt.Errorf("%w: %q is both a store and a catalog collection", ErrInvalidConfig, name)
		}
	}
	return nil
}
