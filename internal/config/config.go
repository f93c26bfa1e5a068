// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Output  OutputConfig  `mapstructure:"output"`
	Archive ArchiveConfig `mapstructure:"archive"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	DB      DBConfig      `mapstructure:"db"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig pins the catalog web API endpoints and identity parameters.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	CityUUID       string `mapstructure:"city_uuid"`
	PerPage        int    `mapstructure:"per_page"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CrawlConfig governs seeding and worker pool behavior.
type CrawlConfig struct {
	CategoryURLs []string `mapstructure:"category_urls"`
	Concurrency  int      `mapstructure:"concurrency"`
	DelayMs      int      `mapstructure:"delay_ms"`
	UserAgent    string   `mapstructure:"user_agent"`
	QueueDepth   int      `mapstructure:"queue_depth"`
}

// OutputConfig sets the JSON-lines feed location.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// ArchiveConfig controls raw payload snapshots.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for per-record publish notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// DBConfig controls the optional Postgres record store.
type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	Table        string `mapstructure:"table"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// ServerConfig controls the status HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ALKOCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://alkoteka.com/web-api/v1")
	v.SetDefault("api.city_uuid", "4a70f9e0-46ae-11e7-83ff-00155d026416")
	v.SetDefault("api.per_page", 20)
	v.SetDefault("api.timeout_seconds", 15)
	v.SetDefault("crawl.category_urls", []string{
		"https://alkoteka.com/catalog/krepkiy-alkogol",
	})
	v.SetDefault("crawl.concurrency", 4)
	v.SetDefault("crawl.delay_ms", 500)
	v.SetDefault("crawl.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("crawl.queue_depth", 64)
	v.SetDefault("output.path", "result.json")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.prefix", "payloads")
	v.SetDefault("db.table", "records")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.CityUUID == "" {
		return fmt.Errorf("api.city_uuid is required")
	}
	if c.API.PerPage <= 0 {
		return fmt.Errorf("api.per_page must be > 0")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0")
	}
	if len(c.Crawl.CategoryURLs) == 0 {
		return fmt.Errorf("crawl.category_urls must not be empty")
	}
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be > 0")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.Archive.Enabled && c.Archive.Dir == "" && c.Archive.GCSBucket == "" {
		return fmt.Errorf("archive requires archive.dir or archive.gcs_bucket when enabled")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// Categories derives the crawl seeds from the configured catalog URLs.
func (c Config) Categories() ([]catalog.Category, error) {
	categories := make([]catalog.Category, 0, len(c.Crawl.CategoryURLs))
	for _, raw := range c.Crawl.CategoryURLs {
		category, err := catalog.CategoryFromURL(raw)
		if err != nil {
			return nil, fmt.Errorf("category seed: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// FetchTimeout converts the API timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Delay converts the pacing config into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Crawl.DelayMs) * time.Millisecond
}
