package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/msomdec/user-registry/internal/session"
)

type Config struct {
	BindAddr   string          `yaml:"bind_addr"`
	Port       string          `yaml:"port"`
	BcryptCost int             `yaml:"bcrypt_cost"`
	Database   DatabaseConfig  `yaml:"database"`
	Session    SessionConfig   `yaml:"session"`
	Log        LogConfig       `yaml:"log"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	Path           string        `yaml:"path"`
	MaxConns       int           `yaml:"max_conns"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

type SessionConfig struct {
	Backend      string `yaml:"backend"`
	Secret       string `yaml:"secret"`
	Dir          string `yaml:"dir"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		BindAddr:   "0.0.0.0",
		Port:       "8080",
		BcryptCost: 12,
		Database: DatabaseConfig{
			Path:           "db.sql",
			MaxConns:       5,
			AcquireTimeout: 5 * time.Second,
		},
		Session: SessionConfig{
			Backend: session.BackendCookie,
			// Default to secure cookies; disable only for local development.
			CookieSecure: true,
		},
		Log:       LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RPS: 1, Burst: 10},
	}
}

// Load builds the configuration from defaults, then the YAML file at
// configPath, then the dotenv file at envPath, then the process environment.
// Missing files are skipped. The result is validated.
func Load(configPath, envPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", configPath)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.UnmarshalStrict(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.BindAddr, "BIND_ADDR")
	setString(&c.Port, "PORT")
	setString(&c.Database.Path, "DATABASE_PATH")
	setString(&c.Session.Backend, "SESSION_BACKEND")
	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.Session.Dir, "SESSION_DIR")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		c.Session.CookieSecure = v != "false"
	}

	for _, f := range []struct {
		key   string
		parse func(string) error
	}{
		{"BCRYPT_COST", intInto(&c.BcryptCost)},
		{"DB_MAX_CONNS", intInto(&c.Database.MaxConns)},
		{"RATE_LIMIT_BURST", intInto(&c.RateLimit.Burst)},
		{"DB_ACQUIRE_TIMEOUT", func(s string) (err error) {
			c.Database.AcquireTimeout, err = time.ParseDuration(s)
			return err
		}},
		{"RATE_LIMIT_RPS", func(s string) (err error) {
			c.RateLimit.RPS, err = strconv.ParseFloat(s, 64)
			return err
		}},
	} {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		if err := f.parse(v); err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max_conns must be at least 1, got %d", c.Database.MaxConns)
	}
	if c.Database.AcquireTimeout <= 0 {
		return errors.New("database acquire_timeout must be positive")
	}
	if !session.ValidBackend(c.Session.Backend) {
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate_limit needs rps >= 0 and burst >= 1")
	}
	return nil
}

// LogLevel maps the configured level name to a slog.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return level, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func intInto(dst *int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}
