// Package config loads server configuration from TOML files and environment
// variables. Environment variables (CODEATLAS_*) override file values, and
// file values override defaults, so a container deployment can run without
// any config file at all.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/codeatlas/codeatlas/pkg/errors"
)

// Config is the full server configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Analyzer Analyzer `toml:"analyzer"`
	Redis    Redis    `toml:"redis"`
	Mongo    Mongo    `toml:"mongo"`
	Log      Log      `toml:"log"`
	Layout   Layout   `toml:"layout"`
}

// Server configures the HTTP listener and job execution mode.
type Server struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string `toml:"addr"`

	// AsyncMode queues analysis jobs and answers POST /parse with 202.
	// When false, /parse blocks until the graph is ready.
	AsyncMode bool `toml:"async_mode"`

	// Workers is the size of the analysis worker pool in async mode.
	Workers int `toml:"workers"`
}

// Analyzer configures the upstream analyzer backend client.
type Analyzer struct {
	// URL is the analyzer backend base URL.
	URL string `toml:"url"`

	// PollIntervalMS is the delay between job status polls, in milliseconds.
	PollIntervalMS int `toml:"poll_interval_ms"`
}

// Redis configures the shared job store and cache. When Addr is empty the
// server falls back to in-memory stores.
type Redis struct {
	Addr string `toml:"addr"`
	DB   int    `toml:"db"`
}

// Mongo configures snapshot storage. When URI is empty snapshots are kept
// in memory and lost on restart.
type Mongo struct {
	URI string `toml:"uri"`
}

// Log configures logging.
type Log struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// Layout overrides the layout engine's spacing constants. Zero values use
// the engine defaults.
type Layout struct {
	LevelHeight   float64 `toml:"level_height"`
	NodeSpacing   float64 `toml:"node_spacing"`
	GroupSpacing  float64 `toml:"group_spacing"`
	Margin        float64 `toml:"margin"`
	FallbackLevel int     `toml:"fallback_level"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Server: Server{
			Addr:      ":5000",
			AsyncMode: false,
			Workers:   4,
		},
		Analyzer: Analyzer{
			URL:            "http://localhost:8400",
			PollIntervalMS: 500,
		},
		Log: Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, and CODEATLAS_* environment variables, in increasing precedence.
// An empty path skips the file layer; a missing file at a non-empty path is
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to load config file %s", path)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for structural problems.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.Server.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.workers must be at least 1")
	}
	if c.Analyzer.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "analyzer.url cannot be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "log.level must be debug, info, warn, or error (got %q)", c.Log.Level)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "CODEATLAS_ADDR")
	setBool(&cfg.Server.AsyncMode, "CODEATLAS_ASYNC_MODE")
	setInt(&cfg.Server.Workers, "CODEATLAS_WORKERS")
	setString(&cfg.Analyzer.URL, "CODEATLAS_ANALYZER_URL")
	setInt(&cfg.Analyzer.PollIntervalMS, "CODEATLAS_POLL_INTERVAL_MS")
	setString(&cfg.Redis.Addr, "CODEATLAS_REDIS_ADDR")
	setInt(&cfg.Redis.DB, "CODEATLAS_REDIS_DB")
	setString(&cfg.Mongo.URI, "CODEATLAS_MONGO_URI")
	setString(&cfg.Log.Level, "CODEATLAS_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
