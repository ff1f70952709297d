// Package config loads server settings from a TOML file and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Transport names accepted in BridgeConfig.Transport.
const (
	TransportMemory = "memory"
	TransportRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Storage StorageConfig `toml:"storage"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Redis   RedisConfig   `toml:"redis"`
	Image   ImageConfig   `toml:"image"`
	Log     LogConfig     `toml:"log"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// Origin is the deck owner's own origin. Direct pick messages from any
	// other origin are dropped.
	Origin string `toml:"origin"`
	// BaseURL is where search windows are opened from.
	BaseURL string `toml:"base_url"`
}

type CatalogConfig struct {
	DataDir string `toml:"data_dir"`
}

type StorageConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "memory"
	Path   string `toml:"path"`
}

type BridgeConfig struct {
	Transport string `toml:"transport"`
	Channel   string `toml:"channel"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type ImageConfig struct {
	FetchInterval string `toml:"fetch_interval"` // e.g. "100ms"
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			Origin:  "http://localhost:8080",
			BaseURL: "http://localhost:8080/",
		},
		Catalog: CatalogConfig{DataDir: "data"},
		Storage: StorageConfig{Driver: "sqlite", Path: "data/hvdeck.db"},
		Bridge:  BridgeConfig{Transport: TransportMemory, Channel: "deck_channel"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Image:   ImageConfig{FetchInterval: "100ms"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. A missing file is not an error; an empty path skips
// the file entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	setFromEnv(&c.Server.Origin, "HVDECK_ORIGIN")
	setFromEnv(&c.Server.BaseURL, "HVDECK_BASE_URL")
	setFromEnv(&c.Catalog.DataDir, "HVDECK_DATA_DIR")
	setFromEnv(&c.Storage.Driver, "HVDECK_STORAGE")
	setFromEnv(&c.Storage.Path, "HVDECK_DB_PATH")
	setFromEnv(&c.Bridge.Transport, "HVDECK_TRANSPORT")
	setFromEnv(&c.Bridge.Channel, "HVDECK_CHANNEL")
	setFromEnv(&c.Redis.Addr, "REDIS_URL")
	setFromEnv(&c.Redis.Password, "REDIS_PASSWORD")
	setFromEnv(&c.Log.Level, "HVDECK_LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	u, err := url.Parse(c.Server.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server origin %q", c.Server.Origin)
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Bridge.Transport {
	case TransportMemory:
	case TransportRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for the redis transport")
		}
	default:
		return fmt.Errorf("unknown bridge transport %q", c.Bridge.Transport)
	}
	if c.Bridge.Channel == "" {
		return fmt.Errorf("bridge channel name is required")
	}
	if _, err := c.FetchInterval(); err != nil {
		return fmt.Errorf("invalid image fetch interval %q: %w", c.Image.FetchInterval, err)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// FetchInterval returns the delay between remote image downloads.
func (c *Config) FetchInterval() (time.Duration, error) {
	if c.Image.FetchInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Image.FetchInterval)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// NewLogger builds the process logger from Log.
func (c *Config) NewLogger() *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
