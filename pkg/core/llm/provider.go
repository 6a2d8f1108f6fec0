// Package llm wraps the hosted model APIs used for filing summaries.
package llm

import (
	"context"
	"errors"

	"secrawler/pkg/core/config"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Provider is the interface for all LLM providers.
type Provider interface {
	// GenerateResponse sends a single-turn request. cfg carries the model id
	// and sampling parameters; providers ignore parameters their API lacks.
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, cfg config.RequestConfig) (string, error)
}
