package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const devJWTSecret = "dev-secret-change-in-production"

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Port      string          `koanf:"port"`
	Env       string          `koanf:"env"`
	Database  DatabaseConfig  `koanf:"database"`
	JWT       JWTConfig       `koanf:"jwt"`
	Log       LogConfig       `koanf:"log"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	Expiry time.Duration `koanf:"expiry"`
}

type LogConfig struct {
	Format string `koanf:"format"`
}

// RateLimitConfig bounds requests per client IP on the credential endpoints.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Port: "8080",
		Env:  "development",
		Database: DatabaseConfig{
			Driver: DriverMySQL,
			DSN:    "root:password@tcp(127.0.0.1:3306)/taskboard?parseTime=true",
		},
		JWT: JWTConfig{
			Secret: devJWTSecret,
			Expiry: 24 * time.Hour,
		},
		Log:       LogConfig{Format: "json"},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

// envKeys maps the recognised environment variables onto config keys.
var envKeys = map[string]string{
	"PORT":             "port",
	"ENV":              "env",
	"DATABASE_DRIVER":  "database.driver",
	"DATABASE_DSN":     "database.dsn",
	"JWT_SECRET":       "jwt.secret",
	"JWT_EXPIRY":       "jwt.expiry",
	"LOG_FORMAT":       "log.format",
	"RATE_LIMIT_RPS":   "rate_limit.rps",
	"RATE_LIMIT_BURST": "rate_limit.burst",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"port":            "port",
	"env":             "env",
	"database-driver": "database.driver",
	"database-dsn":    "database.dsn",
	"log-format":      "log.format",
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file at path (skipped when empty), environment variables and
// explicitly set flags. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		return envKeys[s]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		flagProvider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(flagProvider, nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Env == "production" && (c.JWT.Secret == devJWTSecret || c.JWT.Secret == "") {
		return errors.New("JWT_SECRET must be set in production environment")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("jwt expiry must be positive, got %s", c.JWT.Expiry)
	}
	if c.Database.Driver != DriverMySQL && c.Database.Driver != DriverPostgres {
		return fmt.Errorf("database driver must be %q or %q, got %q", DriverMySQL, DriverPostgres, c.Database.Driver)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}
	return nil
}
