package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(body), 0o644))
	t.Chdir(dir)
}

func TestLoadConfig_FromYAML(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
scrape:
  max_attempts: 4
  backoff: 500ms
  timeout: 3s
  sites:
    - name: only
      url: https://example.com/hacks
      enabled: true
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 4, cfg.Scrape.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Scrape.Backoff)
	assert.Equal(t, 2*time.Second, cfg.Scrape.MaxBackoff, "max_backoff defaults to backoff*attempts")
	assert.Equal(t, 3*time.Second, cfg.Scrape.Timeout)
	require.Len(t, cfg.Scrape.Sites, 1)
	assert.Equal(t, "", cfg.Scrape.Sites[0].Parser, "yaml sites replace defaults instead of merging")
	assert.Equal(t, DefaultUserAgent, cfg.Scrape.UserAgent)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Len(t, cfg.Scrape.Sites, 2)
	assert.Equal(t, 3, cfg.Scrape.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Scrape.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DSN", "postgres://u:p@db:5432/events")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("SCRAPE_USER_AGENT", "custom-agent")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/events", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "custom-agent", cfg.Scrape.UserAgent)
}

func TestLoadConfig_InvalidSite(t *testing.T) {
	writeConfig(t, `
scrape:
  sites:
    - name: bad
      url: ftp://example.com
      enabled: true
`)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sites[0].url")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero attempts", mutate: func(c *Config) { c.Scrape.MaxAttempts = 0 }, wantErr: "max_attempts"},
		{name: "negative delay", mutate: func(c *Config) { c.Scrape.DetailDelay = -time.Second }, wantErr: "不能为负"},
		{name: "zero timeout", mutate: func(c *Config) { c.Scrape.Timeout = 0 }, wantErr: "timeout"},
		{name: "negative cap", mutate: func(c *Config) { c.Scrape.DetailFetchCap = -1 }, wantErr: "detail_fetch_cap"},
		{name: "empty url", mutate: func(c *Config) { c.Scrape.Sites[0].URL = " " }, wantErr: "sites[0].url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScrapeConfigHelpers(t *testing.T) {
	s := ScrapeConfig{
		DetailFetchCap: 10,
		Sites: []SiteConfig{
			{Name: "a", URL: "https://a.example", Enabled: true},
			{URL: "https://b.example/list", Enabled: false},
			{URL: "https://c.example/list", Enabled: true, DetailFetchCap: 3},
		},
	}

	enabled := s.EnabledSites()
	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].SiteName())
	assert.Equal(t, "c.example", enabled[1].SiteName())

	assert.Equal(t, 10, s.DetailCapFor(enabled[0]))
	assert.Equal(t, 3, s.DetailCapFor(enabled[1]))
}
