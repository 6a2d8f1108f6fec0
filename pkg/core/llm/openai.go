package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"secrawler/pkg/core/config"
)

// OpenAIProvider calls OpenAI's Responses API. The API has no top-k
// parameter, so cfg.TopK is ignored.
type OpenAIProvider struct {
	APIKey string
}

var _ Provider = (*OpenAIProvider)(nil)

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, cfg config.RequestConfig) (string, error) {
	if p.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(option.WithAPIKey(p.APIKey))

	params := responses.ResponseNewParams{
		Model:           cfg.ModelName(),
		MaxOutputTokens: openai.Int(int64(cfg.MaxOutputTokens)),
		Temperature:     openai.Float(float64(cfg.Temperature)),
		TopP:            openai.Float(float64(cfg.TopP)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	}
	if systemPrompt != "" {
		params.Instructions = openai.String(systemPrompt)
	}

	resp, err := client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	if resp.Status == "incomplete" {
		return "", fmt.Errorf("response is incomplete (reason = %s)", resp.IncompleteDetails.Reason)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
