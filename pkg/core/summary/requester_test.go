package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"secrawler/pkg/core/config"
	"secrawler/pkg/core/prompt"
)

type MockExecutor struct {
	ExecuteFunc func(ctx context.Context, rc config.RequestConfig, prompt string, systemPrompt string) (string, error)

	calls      int
	lastPrompt string
	lastSystem string
	lastConfig config.RequestConfig
}

func (m *MockExecutor) ExecutePrompt(ctx context.Context, rc config.RequestConfig, prompt string, systemPrompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastSystem = systemPrompt
	m.lastConfig = rc
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, rc, prompt, systemPrompt)
	}
	return "## Summary\n- Revenue grew.", nil
}

func TestRequester_Summarize(t *testing.T) {
	exec := &MockExecutor{}
	rc := config.DefaultRequestConfig()
	r := NewRequester(exec, prompt.NewRegistry(), rc, Options{})

	res, err := r.Summarize(context.Background(), Request{URL: "https://example.com/filing.htm", Content: "SECRET BODY"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.Summary != "## Summary\n- Revenue grew." {
		t.Errorf("Summary = %q", res.Summary)
	}
	if !strings.Contains(exec.lastPrompt, "https://example.com/filing.htm") {
		t.Errorf("prompt should name the URL: %q", exec.lastPrompt)
	}
	if strings.Contains(exec.lastPrompt, "SECRET BODY") {
		t.Errorf("content must not be attached by default: %q", exec.lastPrompt)
	}
	if exec.lastSystem == "" {
		t.Error("system prompt should be set")
	}
	if exec.lastConfig != rc {
		t.Errorf("config = %+v, want %+v", exec.lastConfig, rc)
	}
}

func TestRequester_FixedConfigAcrossCalls(t *testing.T) {
	exec := &MockExecutor{}
	r := NewRequester(exec, prompt.NewRegistry(), config.DefaultRequestConfig(), Options{})

	var prompts []string
	for i := 0; i < 3; i++ {
		if _, err := r.Summarize(context.Background(), Request{URL: "https://example.com/a.htm"}); err != nil {
			t.Fatal(err)
		}
		prompts = append(prompts, exec.lastPrompt)
		if exec.lastConfig.Temperature != 0 || exec.lastConfig.TopP != 0.1 || exec.lastConfig.TopK != 16 || exec.lastConfig.MaxOutputTokens != 8192 {
			t.Errorf("unexpected sampling config %+v", exec.lastConfig)
		}
	}
	if prompts[0] != prompts[1] || prompts[1] != prompts[2] {
		t.Error("the same URL should render the same prompt")
	}
}

func TestRequester_AttachContent(t *testing.T) {
	exec := &MockExecutor{}
	r := NewRequester(exec, prompt.NewRegistry(), config.DefaultRequestConfig(), Options{AttachContent: true, MaxContentChars: 10})

	if _, err := r.Summarize(context.Background(), Request{URL: "https://example.com/a.htm", Content: "0123456789ABCDEF"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(exec.lastPrompt, "0123456789") {
		t.Errorf("content should be attached: %q", exec.lastPrompt)
	}
	if strings.Contains(exec.lastPrompt, "ABCDEF") {
		t.Errorf("content should be truncated: %q", exec.lastPrompt)
	}
}

func TestRequester_Errors(t *testing.T) {
	tests := []struct {
		name string
		exec *MockExecutor
		req  Request
	}{
		{
			name: "API failure",
			exec: &MockExecutor{ExecuteFunc: func(context.Context, config.RequestConfig, string, string) (string, error) {
				return "", errors.New("quota exceeded")
			}},
			req: Request{URL: "https://example.com/a.htm"},
		},
		{
			name: "Empty URL",
			exec: &MockExecutor{},
			req:  Request{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRequester(tt.exec, prompt.NewRegistry(), config.DefaultRequestConfig(), Options{})
			_, err := r.Summarize(context.Background(), tt.req)

			var sErr *SummarizationError
			if !errors.As(err, &sErr) {
				t.Fatalf("expected *SummarizationError, got %v", err)
			}
			if sErr.ModelID != config.DefaultModelID {
				t.Errorf("ModelID = %q", sErr.ModelID)
			}
			if !strings.HasPrefix(ErrorText(err), "Error generating summary: ") {
				t.Errorf("ErrorText() = %q", ErrorText(err))
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 0, "hello"},
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "h"}, // é is two bytes; never split a rune
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
