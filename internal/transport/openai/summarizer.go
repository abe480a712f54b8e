package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	"github.com/kailas-cloud/notegraph/internal/metrics"
)

const (
	defaultChatModel   = openai.GPT4oMini
	defaultTemperature = 0.7
	defaultMaxTags     = 3
)

const summarySystemPrompt = "You are a helpful assistant that summarizes notes and suggests tags. " +
	"Return a JSON object with 'summary' (3 lines max) and 'tags' (array of %d strings max)."

// Summarizer produces a note summary and tags through a JSON-mode chat completion.
type Summarizer struct {
	conn
	model       string
	temperature float32
	maxTags     int
}

var _ domain.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates an OpenAI-compatible summarizer. Zero values fall back to
// gpt-4o-mini, temperature 0.7 and three tags.
func NewSummarizer(cfg *Config) *Summarizer {
	s := &Summarizer{
		conn:        dial(cfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTags:     cfg.MaxTags,
	}
	if s.model == "" {
		s.model = defaultChatModel
	}
	if s.temperature == 0 {
		s.temperature = defaultTemperature
	}
	if s.maxTags <= 0 {
		s.maxTags = defaultMaxTags
	}
	return s
}

type summaryPayload struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Summarize implements domain.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, content string) (domain.Annotation, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(summarySystemPrompt, s.maxTags)},
			{Role: openai.ChatMessageRoleUser, Content: "Summarize this note and suggest tags:\n\n" + content},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: s.temperature,
		User:        s.user,
	}

	start := time.Now()
	resp, err := s.api.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.Summary.Failed(s.provider, s.model, "api_error")
		return domain.Annotation{}, parseAPIError("summary", err)
	}
	if len(resp.Choices) == 0 {
		metrics.Summary.Failed(s.provider, s.model, "empty_response")
		return domain.Annotation{}, fmt.Errorf("empty completion response: %w", domain.ErrAIProviderError)
	}

	payload, err := parseSummary(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.Summary.Failed(s.provider, s.model, "invalid_json")
		s.logger.Debug("summary payload rejected", zap.String("model", s.model), zap.Error(err))
		return domain.Annotation{}, err
	}
	metrics.Summary.Succeeded(s.provider, s.model, time.Since(start), resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	tags := payload.Tags
	if len(tags) > s.maxTags {
		tags = tags[:s.maxTags]
	}

	return domain.Annotation{
		Summary:     strings.TrimSpace(payload.Summary),
		Tags:        tags,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// parseSummary decodes the model's JSON object. Missing fields decode as empty.
func parseSummary(raw string) (summaryPayload, error) {
	var p summaryPayload
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return summaryPayload{}, fmt.Errorf("decode summary JSON: %v: %w", err, domain.ErrAIProviderError)
	}
	return p, nil
}
