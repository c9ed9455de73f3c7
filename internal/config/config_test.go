package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codeatlas/codeatlas/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.AsyncMode {
		t.Error("AsyncMode should default to false")
	}
	if cfg.Analyzer.URL == "" {
		t.Error("Analyzer.URL should have a default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeatlas.toml")
	content := `
[server]
addr = ":9090"
async_mode = true
workers = 8

[analyzer]
url = "http://analyzer:8400"

[redis]
addr = "redis:6379"
db = 2

[layout]
node_spacing = 300.0
fallback_level = 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || !cfg.Server.AsyncMode || cfg.Server.Workers != 8 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Layout.NodeSpacing != 300 || cfg.Layout.FallbackLevel != 7 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CODEATLAS_ADDR", ":7070")
	t.Setenv("CODEATLAS_ASYNC_MODE", "true")
	t.Setenv("CODEATLAS_WORKERS", "16")
	t.Setenv("CODEATLAS_ANALYZER_URL", "http://env-analyzer:8400")
	t.Setenv("CODEATLAS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" || !cfg.Server.AsyncMode || cfg.Server.Workers != 16 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Analyzer.URL != "http://env-analyzer:8400" {
		t.Errorf("Analyzer.URL = %q", cfg.Analyzer.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeatlas.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CODEATLAS_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q, want env override", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero workers", func(c *Config) { c.Server.Workers = 0 }},
		{"empty analyzer url", func(c *Config) { c.Analyzer.URL = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}
