package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad scheme", func(c *Config) { c.Wiki.BaseURL = "ftp://wiki.gg/wiki/" }, "scheme"},
		{"no host", func(c *Config) { c.Wiki.BaseURL = "https:///wiki/" }, "host"},
		{"no trailing slash", func(c *Config) { c.Wiki.BaseURL = "https://terraria.wiki.gg/wiki" }, "trailing slash"},
		{"empty user agent", func(c *Config) { c.Wiki.UserAgent = "" }, "user_agent"},
		{"zero timeout", func(c *Config) { c.Fetcher.Timeout = 0 }, "timeout"},
		{"negative redirects", func(c *Config) { c.Fetcher.MaxRedirects = -1 }, "max_redirects"},
		{"zero body size", func(c *Config) { c.Fetcher.MaxBodySize = 0 }, "max_body_size"},
		{"negative cache", func(c *Config) { c.Fetcher.CacheSize = -1 }, "cache_size"},
		{"negative depth", func(c *Config) { c.Crawler.MaxDepth = -1 }, "max_depth"},
		{"negative wait", func(c *Config) { c.Crawler.Wait = -time.Second }, "wait"},
		{"resume without checkpoint", func(c *Config) { c.Crawler.Resume = true; c.Crawler.CheckpointPath = "" }, "checkpoint_path"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }, "backend"},
		{"json without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"mongo without uri", func(c *Config) { c.Storage.Backend = "mongo"; c.Storage.MongoURI = "" }, "mongo_uri"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }, "metrics.addr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Wiki.BaseURL == "" {
		t.Error("base URL default missing")
	}
	if cfg.Crawler.MaxDepth != 1 {
		t.Errorf("expected default depth 1, got %d", cfg.Crawler.MaxDepth)
	}
	if cfg.Storage.Backend != "json" {
		t.Errorf("expected default json backend, got %q", cfg.Storage.Backend)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wikiharvest.yaml")
	content := `
wiki:
  base_url: "https://minecraft.wiki/w/"
crawler:
  max_depth: 3
  wait: 250ms
storage:
  backend: json
  path: out.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Wiki.BaseURL != "https://minecraft.wiki/w/" {
		t.Errorf("base URL not loaded: %q", cfg.Wiki.BaseURL)
	}
	if cfg.Crawler.MaxDepth != 3 {
		t.Errorf("depth not loaded: %d", cfg.Crawler.MaxDepth)
	}
	if cfg.Crawler.Wait != 250*time.Millisecond {
		t.Errorf("wait not loaded: %s", cfg.Crawler.Wait)
	}
	// Unset keys keep their defaults.
	if cfg.Wiki.UserAgent == "" {
		t.Error("default user agent lost")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WIKIHARVEST_CRAWLER_MAX_DEPTH", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawler.MaxDepth != 7 {
		t.Errorf("env override ignored: %d", cfg.Crawler.MaxDepth)
	}
}
