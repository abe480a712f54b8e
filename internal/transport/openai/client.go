// Package openai adapts any OpenAI-compatible HTTP API (OpenAI, Nebius, local gateways)
// to the domain embedding and summarization contracts.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds the provider settings shared by the embedder and the summarizer.
type Config struct {
	APIKey      string
	BaseURL     string // empty means api.openai.com
	Model       string
	Dimensions  int // embedder only; 0 keeps the model default
	Temperature float32
	MaxTags     int
	User        string
	Provider    string // metrics label
	Logger      *zap.Logger
}

// conn is the API handle and labels common to both adapters.
type conn struct {
	api      *openai.Client
	provider string
	user     string
	logger   *zap.Logger
}

func dial(cfg *Config) conn {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return conn{
		api:      openai.NewClientWithConfig(apiCfg),
		provider: cfg.Provider,
		user:     cfg.User,
		logger:   logger,
	}
}

// HealthCheck lists models, which costs no tokens.
func (c conn) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
