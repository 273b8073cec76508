package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
// Rejections here happen before any fetch occurs.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Wiki.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid wiki.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("wiki.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("wiki.base_url must include a host")
	}
	if !strings.HasSuffix(cfg.Wiki.BaseURL, "/") {
		return fmt.Errorf("wiki.base_url must end with a trailing slash")
	}
	if cfg.Wiki.UserAgent == "" {
		return fmt.Errorf("wiki.user_agent must not be empty")
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0, got %d", cfg.Fetcher.MaxRedirects)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.CacheSize < 0 {
		return fmt.Errorf("fetcher.cache_size must be >= 0, got %d", cfg.Fetcher.CacheSize)
	}

	if cfg.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0, got %d", cfg.Crawler.MaxDepth)
	}
	if cfg.Crawler.Wait < 0 {
		return fmt.Errorf("crawler.wait must be >= 0, got %s", cfg.Crawler.Wait)
	}
	if cfg.Crawler.Resume && cfg.Crawler.CheckpointPath == "" {
		return fmt.Errorf("crawler.checkpoint_path must be set when crawler.resume is enabled")
	}

	switch cfg.Storage.Backend {
	case "json":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set for the json backend")
		}
	case "mongo":
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri must be set for the mongo backend")
		}
		if cfg.Storage.MongoDatabase == "" || cfg.Storage.MongoCollection == "" {
			return fmt.Errorf("storage.mongo_database and storage.mongo_collection must be set for the mongo backend")
		}
	default:
		return fmt.Errorf("storage.backend must be 'json' or 'mongo', got %q", cfg.Storage.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}

	return nil
}
