package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the service reads at startup
type Config struct {
	Environment string           `yaml:"environment"`
	Server      ServerConfig     `yaml:"server"`
	Database    DatabaseConfig   `yaml:"database"`
	NATS        NATSConfig       `yaml:"nats"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Authentik   AuthentikConfig  `yaml:"authentik"`
	Log         LogConfig        `yaml:"log"`
	Draft       DraftConfig      `yaml:"draft"`
}

// ServerConfig holds listener settings
type ServerConfig struct {
	Port     string `yaml:"port"`
	GRPCPort string `yaml:"grpc_port"`
	// RateLimit is the sustained number of draft mutations per second
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// DatabaseConfig selects and configures the registry store
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	SQLiteFile string `yaml:"sqlite_file"`
	URL        string `yaml:"url"`
}

// NATSConfig holds NATS settings
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds analytics settings
type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AuthentikConfig holds OAuth2 settings
type AuthentikConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DraftConfig holds draft engine settings
type DraftConfig struct {
	// EventName, when set, replaces the stored event at startup
	EventName string `yaml:"event_name"`
	// Seed makes every draft reproducible when non-zero
	Seed          uint64        `yaml:"seed"`
	RevealDelay   time.Duration `yaml:"reveal_delay"`
	CompleteDelay time.Duration `yaml:"complete_delay"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "3000",
			GRPCPort:  "50051",
			RateLimit: 5,
			RateBurst: 10,
		},
		Database: DatabaseConfig{
			Driver:     "memory",
			SQLiteFile: "dev.sqlite",
		},
		NATS: NATSConfig{
			URL:     "nats://localhost:4222",
			Subject: "draft.events",
		},
		ClickHouse: ClickHouseConfig{
			Addr:     "localhost:9000",
			Database: "default",
			User:     "default",
		},
		Authentik: AuthentikConfig{
			RedirectURL: "http://localhost:3000/auth/callback",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Draft: DraftConfig{
			RevealDelay:   3000 * time.Millisecond,
			CompleteDelay: 1500 * time.Millisecond,
		},
	}
}

// LoadConfig reads filename over the defaults and then applies environment
// overrides. A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
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
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("ENVIRONMENT", &c.Environment)
	setString("PORT", &c.Server.Port)
	setString("GRPC_PORT", &c.Server.GRPCPort)
	setString("DB_DRIVER", &c.Database.Driver)
	setString("SQLITE_FILE", &c.Database.SQLiteFile)
	setString("DATABASE_URL", &c.Database.URL)
	setString("NATS_URL", &c.NATS.URL)
	setString("NATS_SUBJECT", &c.NATS.Subject)
	setString("CLICKHOUSE_ADDR", &c.ClickHouse.Addr)
	setString("CLICKHOUSE_DB", &c.ClickHouse.Database)
	setString("CLICKHOUSE_USER", &c.ClickHouse.User)
	setString("CLICKHOUSE_PASSWORD", &c.ClickHouse.Password)
	setString("AUTHENTIK_BASE_URL", &c.Authentik.BaseURL)
	setString("AUTHENTIK_CLIENT_ID", &c.Authentik.ClientID)
	setString("AUTHENTIK_CLIENT_SECRET", &c.Authentik.ClientSecret)
	setString("AUTHENTIK_REDIRECT_URL", &c.Authentik.RedirectURL)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FILE", &c.Log.File)
	setString("EVENT_NAME", &c.Draft.EventName)

	if v := os.Getenv("DRAFT_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DRAFT_SEED %q: %w", v, err)
		}
		c.Draft.Seed = seed
	}
	if v := os.Getenv("DRAFT_REVEAL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DRAFT_REVEAL_DELAY %q: %w", v, err)
		}
		c.Draft.RevealDelay = d
	}
	if v := os.Getenv("DRAFT_COMPLETE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DRAFT_COMPLETE_DELAY %q: %w", v, err)
		}
		c.Draft.CompleteDelay = d
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT %q: %w", v, err)
		}
		c.Server.RateLimit = f
	}
	return nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory", "sqlite":
	case "postgres":
		// development falls back to a SQLite-backed stand-in
		if c.Database.URL == "" && !c.IsDevelopment() {
			return errors.New("DATABASE_URL is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER: %s (valid: memory, sqlite, postgres)", c.Database.Driver)
	}

	if c.Draft.RevealDelay < 0 || c.Draft.CompleteDelay < 0 {
		return errors.New("draft delays must not be negative")
	}

	if !c.IsDevelopment() && (c.Authentik.BaseURL == "" || c.Authentik.ClientID == "" || c.Authentik.ClientSecret == "") {
		return errors.New("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET are required outside development")
	}
	return nil
}

// IsDevelopment reports whether local doubles replace external services
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Environment)
	return env == "" || env == "development"
}
