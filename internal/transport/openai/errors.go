package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/notegraph/internal/domain"
)

// parseAPIError turns a client error into a readable message wrapping
// domain.ErrAIProviderError.
func parseAPIError(call string, err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("%s API error %d: %s: %w", call, apiErr.HTTPStatusCode, apiErr.Message, domain.ErrAIProviderError)
	case errors.As(err, &reqErr):
		return fmt.Errorf("%s API error %d: %s: %w", call, reqErr.HTTPStatusCode, bodyDetail(reqErr.Body), domain.ErrAIProviderError)
	default:
		return fmt.Errorf("%s request failed: %v: %w", call, err, domain.ErrAIProviderError)
	}
}

// bodyDetail prefers a {"detail": "..."} message, as sent by Nebius, over the raw body.
func bodyDetail(body []byte) string {
	var v struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err == nil && v.Detail != "" {
		return v.Detail
	}
	return string(body)
}
