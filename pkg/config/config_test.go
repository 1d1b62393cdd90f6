package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Summarizer.Themes) != 12 {
		t.Errorf("themes = %d, want 12", len(cfg.Summarizer.Themes))
	}
	for theme, w := range cfg.Summarizer.Themes {
		if w != 5 {
			t.Errorf("theme %q weight = %d", theme, w)
		}
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Annotator.Type != "rule" {
		t.Errorf("annotator = %q", cfg.Annotator.Type)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  requestTimeout: 3s
summarizer:
  keywordCount: 7
  themes:
    clima: 4
cache:
  enabled: true
  ttl: 1m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.RequestTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Summarizer.KeywordCount != 7 {
		t.Errorf("keywordCount = %d", cfg.Summarizer.KeywordCount)
	}
	if len(cfg.Summarizer.Themes) != 1 || cfg.Summarizer.Themes["clima"] != 4 {
		t.Errorf("themes = %v, want only clima", cfg.Summarizer.Themes)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unset section lost its default: %q", cfg.Redis.Addr)
	}
}

func TestLoadFileKeepsDefaultThemes(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 8001\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Summarizer.Themes) != len(DefaultThemes()) {
		t.Errorf("themes = %v", cfg.Summarizer.Themes)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("bad yaml: expected error")
	}
	if _, err := Load(writeConfig(t, "annotator:\n  type: spacy\n")); err == nil {
		t.Error("unknown annotator: expected error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TS_SERVER_PORT", "7000")
	t.Setenv("TS_LOGGING_LEVEL", "debug")
	t.Setenv("TS_CORS_ALLOW_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("TS_KEYWORD_COUNT", "3")
	t.Setenv("TS_CACHE_ENABLED", "true")
	t.Setenv("TS_ANNOTATOR_TYPE", "remote")
	t.Setenv("TS_ANNOTATOR_URL", "http://nlp:8090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Logging.Level != "debug" || cfg.Summarizer.KeywordCount != 3 || !cfg.Cache.Enabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if strings.Join(cfg.CORS.AllowOrigins, "|") != "http://a.example|http://b.example" {
		t.Errorf("origins = %v", cfg.CORS.AllowOrigins)
	}
	if cfg.Annotator.Type != "remote" || cfg.Annotator.Remote.URL != "http://nlp:8090" {
		t.Errorf("annotator = %+v", cfg.Annotator)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"metrics port", func(c *Config) { c.Metrics.Port = 70000 }, "metrics.port"},
		{"remote url", func(c *Config) { c.Annotator.Type = "remote"; c.Annotator.Remote.URL = "" }, "annotator.remote.url"},
		{"keywords", func(c *Config) { c.Summarizer.KeywordCount = 0 }, "keywordCount"},
		{"theme weight", func(c *Config) { c.Summarizer.Themes = map[string]int{"x": -1} }, "themes"},
		{"rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = -5 }, "requestsPerMinute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	dsn := Default().Postgres.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=textsummarizer", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}

func TestDevelopmentConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "development.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Cache.Enabled || cfg.Analytics.BatchSize != 50 || len(cfg.Summarizer.Themes) != 12 {
		t.Errorf("cfg = %+v", cfg)
	}
}
