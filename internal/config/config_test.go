package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
source:
  base_url: https://books.example.com/
  recommend_path: /query={title}
  limit: 5
  timeout: 2s
breaker:
  failure_ratio: 0.5
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://books.example.com", cfg.Source.BaseURL)
	assert.Equal(t, "/query={title}", cfg.Source.RecommendPath)
	assert.Equal(t, 5, cfg.Source.Limit)
	assert.Equal(t, 2*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 0.5, cfg.Breaker.FailureRatio)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep defaults
	assert.Equal(t, "/books", cfg.Source.CatalogPath)
	assert.Equal(t, "bookrec> ", cfg.CLI.Prompt)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "source:\n  base_url: http://from-file\n")
	t.Setenv("BOOKREC_SOURCE_BASE_URL", "http://from-env:9000")
	t.Setenv("BOOKREC_SOURCE_LIMIT", "3")
	t.Setenv("BOOKREC_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9000", cfg.Source.BaseURL)
	assert.Equal(t, 3, cfg.Source.Limit)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Empty Base URL", func(c *Config) { c.Source.BaseURL = "" }},
		{"Recommend Path Without Title", func(c *Config) { c.Source.RecommendPath = "/recommend" }},
		{"Empty Catalog Path", func(c *Config) { c.Source.CatalogPath = "" }},
		{"Negative Limit", func(c *Config) { c.Source.Limit = -1 }},
		{"Failure Ratio Above One", func(c *Config) { c.Breaker.FailureRatio = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "source: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}
