package agent

import (
	"context"
	"fmt"
	"sort"

	"secrawler/pkg/core/config"
	"secrawler/pkg/core/llm"
	"secrawler/pkg/core/logging"
)

// Manager maps model-id provider prefixes ("googleai", "openai") to
// llm.Provider implementations.
type Manager struct {
	providers map[string]llm.Provider
}

// NewManager wires the providers available with the given configuration.
func NewManager(cfg config.Config) *Manager {
	var gemini llm.Provider = &llm.GeminiProvider{APIKey: cfg.Secrets.GeminiKey()}
	if cfg.Model.GeminiSDK == "generative-ai-go" {
		gemini = &llm.GenerativeAIProvider{APIKey: cfg.Secrets.GeminiKey()}
	}

	return &Manager{
		providers: map[string]llm.Provider{
			"googleai": gemini,
			"openai":   &llm.OpenAIProvider{APIKey: cfg.Secrets.OpenAIAPIKey},
		},
	}
}

// NewManagerWithProviders is used by tests to inject fake providers.
func NewManagerWithProviders(providers map[string]llm.Provider) *Manager {
	return &Manager{providers: providers}
}

// GetProvider resolves the provider serving rc.ModelID.
func (m *Manager) GetProvider(rc config.RequestConfig) (llm.Provider, error) {
	name := rc.Provider()
	if p, ok := m.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("provider %q not found for model %s (available: %v)", name, rc.ModelID, m.Available())
}

// Available lists registered provider prefixes in sorted order.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ExecutePrompt sends the prompt to the provider for rc.ModelID.
func (m *Manager) ExecutePrompt(ctx context.Context, rc config.RequestConfig, prompt string, systemPrompt string) (string, error) {
	provider, err := m.GetProvider(rc)
	if err != nil {
		return "", err
	}

	logging.For("agent").WithField("model", rc.ModelID).Debugf("ExecutePrompt: providerType=%T", provider)
	return provider.GenerateResponse(ctx, prompt, systemPrompt, rc)
}
