package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://alkoteka.com/web-api/v1" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.CityUUID != "4a70f9e0-46ae-11e7-83ff-00155d026416" {
		t.Fatalf("unexpected city uuid %q", cfg.API.CityUUID)
	}
	if cfg.API.PerPage != 20 {
		t.Fatalf("expected per_page 20, got %d", cfg.API.PerPage)
	}
	if cfg.Crawl.Concurrency != 4 {
		t.Fatalf("expected concurrency 4, got %d", cfg.Crawl.Concurrency)
	}
	if cfg.Output.Path != "result.json" {
		t.Fatalf("unexpected output path %q", cfg.Output.Path)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != 8080 {
		t.Fatalf("expected server enabled on 8080, got %+v", cfg.Server)
	}
	if got := cfg.FetchTimeout(); got != 15*time.Second {
		t.Fatalf("expected fetch timeout 15s, got %v", got)
	}
	if got := cfg.Delay(); got != 500*time.Millisecond {
		t.Fatalf("expected delay 500ms, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
api:
  base_url: https://staging.alkoteka.com/web-api/v1
  per_page: 50
crawl:
  category_urls:
    - https://alkoteka.com/catalog/vino
    - https://alkoteka.com/catalog/krepkiy-alkogol
  concurrency: 8
  delay_ms: 100
output:
  path: /tmp/records.jsonl
archive:
  enabled: true
  dir: /tmp/raw
db:
  dsn: postgres://crawl@localhost/crawl
  table: crawl_records
server:
  enabled: false
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://staging.alkoteka.com/web-api/v1" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.PerPage != 50 {
		t.Fatalf("expected per_page 50, got %d", cfg.API.PerPage)
	}
	if len(cfg.Crawl.CategoryURLs) != 2 {
		t.Fatalf("expected 2 category urls, got %+v", cfg.Crawl.CategoryURLs)
	}
	if cfg.Crawl.Concurrency != 8 {
		t.Fatalf("expected concurrency 8, got %d", cfg.Crawl.Concurrency)
	}
	if cfg.Output.Path != "/tmp/records.jsonl" {
		t.Fatalf("unexpected output path %q", cfg.Output.Path)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Dir != "/tmp/raw" {
		t.Fatalf("expected archive overrides to apply: %+v", cfg.Archive)
	}
	if cfg.DB.DSN != "postgres://crawl@localhost/crawl" || cfg.DB.Table != "crawl_records" {
		t.Fatalf("expected db overrides to apply: %+v", cfg.DB)
	}
	if cfg.Server.Enabled {
		t.Fatal("expected server to be disabled")
	}
	if cfg.Logging.Development {
		t.Fatal("expected production logging")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "base_url"},
		{"empty city uuid", func(c *Config) { c.API.CityUUID = "" }, "city_uuid"},
		{"zero per page", func(c *Config) { c.API.PerPage = 0 }, "per_page"},
		{"zero timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"no categories", func(c *Config) { c.Crawl.CategoryURLs = nil }, "category_urls"},
		{"zero concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }, "concurrency"},
		{"empty output", func(c *Config) { c.Output.Path = "" }, "output.path"},
		{"archive without target", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Dir = ""
			c.Archive.GCSBucket = ""
		}, "archive"},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCategoriesDerivesSlugs(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Crawl.CategoryURLs = []string{
		"https://alkoteka.com/catalog/krepkiy-alkogol",
		"https://alkoteka.com/catalog/vino/",
	}

	categories, err := cfg.Categories()
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Slug != "krepkiy-alkogol" || categories[1].Slug != "vino" {
		t.Fatalf("unexpected slugs: %+v", categories)
	}
}

func TestCategoriesRejectsBareHost(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Crawl.CategoryURLs = []string{"https://alkoteka.com"}

	if _, err := cfg.Categories(); err == nil {
		t.Fatal("expected error for category url without path")
	}
}
