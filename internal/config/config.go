package config

import (
	"fmt"
	"time"
)

// Config holds the notegraph API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Graph    GraphConfig    `yaml:"graph"`
	Review   ReviewConfig   `yaml:"review"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis/Valkey connection settings. Addrs must name exactly one
// standalone server; Redis Cluster is not supported.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AIConfig holds the OpenAI-compatible provider settings used for embeddings and summaries.
type AIConfig struct {
	Provider            string  `yaml:"provider"`
	APIKey              string  `yaml:"api_key"`
	BaseURL             string  `yaml:"base_url"`
	EmbeddingModel      string  `yaml:"embedding_model"`
	EmbeddingDimensions int     `yaml:"embedding_dimensions"` // 0 = model default
	ChatModel           string  `yaml:"chat_model"`
	Temperature         float32 `yaml:"temperature"`
	MaxTags             int     `yaml:"max_tags"`
	Summarize           *bool   `yaml:"summarize"` // default true
	EmbedCache          bool    `yaml:"embed_cache"`
	EmbedCacheTTLHours  int     `yaml:"embed_cache_ttl_hours"` // 0 = no expiry
}

// SummarizeEnabled reports whether notes get a generated summary and tags.
func (c AIConfig) SummarizeEnabled() bool { return c.Summarize == nil || *c.Summarize }

// EmbedCacheTTL returns the embedding cache TTL, zero for no expiry.
func (c AIConfig) EmbedCacheTTL() time.Duration {
	return time.Duration(c.EmbedCacheTTLHours) * time.Hour
}

// GraphConfig holds similarity graph settings.
type GraphConfig struct {
	LinkThreshold       *float64 `yaml:"link_threshold"`
	HighlightThreshold  *float64 `yaml:"highlight_threshold"`
	Workers             int      `yaml:"workers"`
	RelatedLimit        int      `yaml:"related_limit"`
	SimilarityCacheSize int      `yaml:"similarity_cache_size"`
}

// ReviewConfig holds spaced-repetition settings.
type ReviewConfig struct {
	OffsetsDays []int  `yaml:"offsets_days"`
	Timezone    string `yaml:"timezone"` // IANA name or "Local"
}

// Location resolves the configured timezone.
func (c ReviewConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30 // create waits on summary + embedding
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = "gpt-4o-mini"
	}
	if c.AI.Temperature <= 0 {
		c.AI.Temperature = 0.7
	}
	if c.AI.MaxTags <= 0 {
		c.AI.MaxTags = 3
	}
	if c.Graph.LinkThreshold == nil {
		v := 0.5
		c.Graph.LinkThreshold = &v
	}
	if c.Graph.HighlightThreshold == nil {
		v := 0.7
		c.Graph.HighlightThreshold = &v
	}
	if c.Graph.Workers <= 0 {
		c.Graph.Workers = 1
	}
	if c.Graph.RelatedLimit <= 0 {
		c.Graph.RelatedLimit = 5
	}
	if c.Graph.SimilarityCacheSize <= 0 {
		c.Graph.SimilarityCacheSize = 100_000
	}
	if len(c.Review.OffsetsDays) == 0 {
		c.Review.OffsetsDays = []int{3, 7, 14, 30}
	}
	if c.Review.Timezone == "" {
		c.Review.Timezone = "Local"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "notegraph:"
	}
}

// Validate checks the configuration for correctness. Call after ApplyDefaults.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if len(c.Database.Addrs) > 1 {
		return fmt.Errorf("database.addrs must name one standalone server, got %d", len(c.Database.Addrs))
	}
	if c.AI.MaxTags > 10 {
		return fmt.Errorf("ai.max_tags must be at most 10, got %d", c.AI.MaxTags)
	}
	if c.Graph.LinkThreshold != nil && c.Graph.HighlightThreshold != nil {
		link, hl := *c.Graph.LinkThreshold, *c.Graph.HighlightThreshold
		if link < -1 || link > 1 {
			return fmt.Errorf("graph.link_threshold must be in [-1, 1], got %v", link)
		}
		if hl < -1 || hl > 1 {
			return fmt.Errorf("graph.highlight_threshold must be in [-1, 1], got %v", hl)
		}
		if hl < link {
			return fmt.Errorf("graph.highlight_threshold (%v) must not be below graph.link_threshold (%v)", hl, link)
		}
	}
	for i, d := range c.Review.OffsetsDays {
		if d <= 0 {
			return fmt.Errorf("review.offsets_days[%d] must be positive, got %d", i, d)
		}
		if i > 0 && d <= c.Review.OffsetsDays[i-1] {
			return fmt.Errorf("review.offsets_days must be strictly ascending, got %v", c.Review.OffsetsDays)
		}
	}
	if _, err := c.Review.Location(); err != nil {
		return fmt.Errorf("review.timezone: %w", err)
	}
	return nil
}
