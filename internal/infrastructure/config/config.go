// Package config loads process configuration from the environment. A .env
// file in the working directory is read first when present; variables already
// set in the environment win over it.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/bandobast/zone-monitor/internal/core/monitor"
	"github.com/bandobast/zone-monitor/internal/core/zone"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Zones    ZoneConfig
	Feeds    FeedConfig
	Dispatch DispatchConfig
	Ingest   IngestConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=zone_monitor"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,        default=0"`
	AlertChannel string        `env:"ALERT_CHANNEL,   default=zone-monitor:alerts"`
	DedupTTL     time.Duration `env:"ALERT_DEDUP_TTL, default=24h"`
}

type ZoneConfig struct {
	// File is a YAML or GeoJSON zone file. Empty selects the built-in
	// Chennai operating zone.
	File          string `env:"ZONES_FILE"`
	Match         string `env:"ZONE_MATCH,     default=any"`
	FirstSighting string `env:"FIRST_SIGHTING, default=suppress"`
}

type FeedConfig struct {
	PollInterval time.Duration `env:"POLL_INTERVAL, default=5s"`
	FallbackFile string        `env:"FALLBACK_FILE"`
	Live         bool          `env:"LIVE_FEED,     default=true"`
	Poll         bool          `env:"POLL_FEED,     default=true"`
}

type DispatchConfig struct {
	Workers int `env:"WORKERS, default=8"`
}

type IngestConfig struct {
	// Rate is requests per second per client on the ingest routes; 0 disables limiting.
	Rate  float64 `env:"INGEST_RATE,  default=50"`
	Burst int     `env:"INGEST_BURST, default=100"`
}

// IsProduction reports whether the service runs with production defaults
// (JSON logs, no swagger UI).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MatchMode returns the parsed zone match mode.
func (c *Config) MatchMode() zone.MatchMode {
	m, _ := zone.ParseMatchMode(c.Zones.Match)
	return m
}

// FirstSightingPolicy returns the parsed first sighting policy.
func (c *Config) FirstSightingPolicy() monitor.FirstSightingPolicy {
	p, _ := monitor.ParseFirstSightingPolicy(c.Zones.FirstSighting)
	return p
}

// Load reads .env (if any) and the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := zone.ParseMatchMode(c.Zones.Match); err != nil {
		return err
	}
	if _, err := monitor.ParseFirstSightingPolicy(c.Zones.FirstSighting); err != nil {
		return err
	}
	if c.Feeds.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.Feeds.PollInterval)
	}
	if c.Ingest.Rate < 0 {
		return fmt.Errorf("INGEST_RATE must not be negative, got %v", c.Ingest.Rate)
	}
	return nil
}
