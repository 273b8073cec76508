package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for wikiharvest.
type Config struct {
	Wiki    WikiConfig    `mapstructure:"wiki"    yaml:"wiki"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Crawler CrawlerConfig `mapstructure:"crawler" yaml:"crawler"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// WikiConfig names the target wiki.
type WikiConfig struct {
	// BaseURL is the article root; page titles are appended to it.
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url"`
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// FetcherConfig controls the HTTP page fetcher.
type FetcherConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"            yaml:"timeout"`
	FollowRedirects  bool          `mapstructure:"follow_redirects"   yaml:"follow_redirects"`
	MaxRedirects     int           `mapstructure:"max_redirects"      yaml:"max_redirects"`
	MaxBodySize      int64         `mapstructure:"max_body_size"      yaml:"max_body_size"`
	CacheSize        int           `mapstructure:"cache_size"         yaml:"cache_size"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots_txt" yaml:"respect_robots_txt"`
	IdleConnTimeout  time.Duration `mapstructure:"idle_conn_timeout"  yaml:"idle_conn_timeout"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"     yaml:"max_idle_conns"`
}

// CrawlerConfig controls the breadth-first crawl.
type CrawlerConfig struct {
	MaxDepth       int           `mapstructure:"max_depth"       yaml:"max_depth"`
	Wait           time.Duration `mapstructure:"wait"            yaml:"wait"`
	CheckpointPath string        `mapstructure:"checkpoint_path" yaml:"checkpoint_path"`
	// Resume restores the visited set and pending queue from the
	// checkpoint so pages seen in a prior run are not re-crawled.
	Resume bool `mapstructure:"resume" yaml:"resume"`
}

// StorageConfig selects the word-count accumulator backend.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"          yaml:"backend"` // json or mongo
	Path            string `mapstructure:"path"             yaml:"path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint exposed during crawls.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr"    yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Wiki: WikiConfig{
			BaseURL:   "https://terraria.wiki.gg/wiki/",
			UserAgent: "wikiharvest/" + Version + " (word-frequency research crawler)",
		},
		Fetcher: FetcherConfig{
			Timeout:          30 * time.Second,
			FollowRedirects:  true,
			MaxRedirects:     10,
			MaxBodySize:      10 * 1024 * 1024, // 10MB
			CacheSize:        128,
			RespectRobotsTxt: true,
			IdleConnTimeout:  90 * time.Second,
			MaxIdleConns:     100,
		},
		Crawler: CrawlerConfig{
			MaxDepth:       1,
			Wait:           time.Second,
			CheckpointPath: ".wikiharvest/checkpoint.json",
			Resume:         false,
		},
		Storage: StorageConfig{
			Backend:         "json",
			Path:            "word-counts.json",
			MongoDatabase:   "wikiharvest",
			MongoCollection: "word_counts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}
