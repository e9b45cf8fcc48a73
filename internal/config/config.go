// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Save backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config groups are embedded so every variable sits directly under the
// prefix.
type Config struct {
	ServerConfig
	StoryConfig
	SavesConfig
	EventsConfig
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	AssetsDir       string        `envconfig:"ASSETS_DIR" default:"static"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type StoryConfig struct {
	StoryPath   string `envconfig:"STORY_PATH" default:"stories/xianxia.yaml"`
	// CatalogPath is optional; the built-in catalog is used when empty.
	CatalogPath string `envconfig:"CATALOG_PATH"`
}

type SavesConfig struct {
	Backend       string        `envconfig:"SAVE_BACKEND" default:"memory"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisTTL      time.Duration `envconfig:"REDIS_SAVE_TTL" default:"0s"`
}

type EventsConfig struct {
	// AMQPURL enables event publishing when set.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"xianxia.events"`
}

// Load reads XIANXIA_-prefixed variables, e.g. XIANXIA_HTTP_ADDR. The bare
// name (HTTP_ADDR, DATABASE_URL) is used when the prefixed one is unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("xianxia", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: SAVE_BACKEND=postgres needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown SAVE_BACKEND %q", c.Backend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("config: LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger builds the process logger: human-readable console output by
// default, one JSON object per line with LOG_FORMAT=json.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	if c.LogFormat != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(c.Level()).With().Timestamp().Logger()
}
