package model

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config is the complete runtime configuration
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Classifier  ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the reference tables.
// Table paths are relative to Dir unless absolute. SQLitePath, when set, replaces the CSV tables.
type DataConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	SQLitePath    string `yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	PressReleases string `yaml:"press_releases" mapstructure:"press_releases"`
	Advisors      string `yaml:"advisors" mapstructure:"advisors"`
	Features      string `yaml:"features" mapstructure:"features"`
	CategoryMap   string `yaml:"category_map" mapstructure:"category_map"`
	Posts         string `yaml:"posts" mapstructure:"posts"`
}

// ClassifierConfig locates the market/financial classifier artifact
type ClassifierConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// EmbeddingConfig selects the sentence-embedding backend
type EmbeddingConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // ollama, openai, or hash (offline, lexical only)
	Model             string        `yaml:"model" mapstructure:"model"` // Empty picks the provider default
	APIKey            string        `yaml:"-" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Dimensions        int           `yaml:"dimensions" mapstructure:"dimensions"` // hash provider only
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	BreakerFailures   uint32        `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// Default embedding model per provider, used when embedding.model is empty
var defaultEmbeddingModels = map[string]string{
	"openai": "text-embedding-3-small",
	"ollama": "all-minilm",
}

// ModelName returns the configured model, or the provider's default when unset
func (e EmbeddingConfig) ModelName() string {
	if e.Model != "" {
		return e.Model
	}
	return defaultEmbeddingModels[strings.ToLower(e.Provider)]
}

// CacheConfig controls the embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"` // Empty disables the disk layer
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr              string  `yaml:"addr" mapstructure:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // Per client IP; 0 disables
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// OutputConfig controls logging and report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	LogJSON       bool `yaml:"log_json" mapstructure:"log_json"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:           "data",
			PressReleases: "press_release_data_labeled.csv",
			Advisors:      "advisor_data_labeled.csv",
			Features:      "model_1_X_test_data.csv",
			CategoryMap:   "company_to_category_map.csv",
			Posts:         "raw_social_data_labeled.csv",
		},
		Classifier: ClassifierConfig{
			Path: "model_data/model_1_market_financial.json",
		},
		Embedding: EmbeddingConfig{
			Provider:          "ollama",
			Timeout:           30 * time.Second,
			Dimensions:        384,
			RequestsPerSecond: 5,
			Burst:             5,
			BreakerFailures:   5,
			BreakerTimeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Server: ServerConfig{
			Addr:  ":8090",
			Burst: 10,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	switch strings.ToLower(c.Embedding.Provider) {
	case "openai", "ollama", "hash":
	default:
		return fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama, hash)", c.Embedding.Provider)
	}
	if c.Concurrency.Workers <= 0 {
		return fmt.Errorf("concurrency.workers must be positive, got %d", c.Concurrency.Workers)
	}
	if c.Data.SQLitePath == "" && c.Data.Dir == "" {
		return fmt.Errorf("data.dir or data.sqlite_path is required")
	}
	if c.Classifier.Path == "" {
		return fmt.Errorf("classifier.path is required")
	}
	return nil
}

// TablePath resolves a table file name against the data directory
func (d DataConfig) TablePath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}
