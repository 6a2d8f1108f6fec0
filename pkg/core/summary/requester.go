// Package summary asks a hosted model for a summary of a single filing.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"secrawler/pkg/core/config"
	"secrawler/pkg/core/logging"
	"secrawler/pkg/core/prompt"
)

// ErrorPrefix starts the text shown in place of a failed summary.
const ErrorPrefix = "Error generating summary: "

// Request identifies the filing to summarize. Content is optional
// extracted text; it is only forwarded when the requester was built with
// attachContent.
type Request struct {
	URL     string
	Content string
}

// Result is a successful summary.
type Result struct {
	Summary string `json:"summary"`
}

// SummarizationError wraps any failure of the model call.
type SummarizationError struct {
	ModelID string
	Err     error
}

func (e *SummarizationError) Error() string {
	return e.Err.Error()
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// ErrorText renders err the way the UI shows it in place of the summary.
func ErrorText(err error) string {
	return ErrorPrefix + err.Error()
}

// PromptExecutor sends a rendered prompt to the provider for rc.ModelID.
// Implemented by agent.Manager.
type PromptExecutor interface {
	ExecutePrompt(ctx context.Context, rc config.RequestConfig, prompt string, systemPrompt string) (string, error)
}

// Options tune what the requester sends besides the URL.
type Options struct {
	AttachContent   bool
	MaxContentChars int
}

// Requester renders the summarization prompt and dispatches it with a fixed
// RequestConfig.
type Requester struct {
	executor PromptExecutor
	prompts  *prompt.Registry
	cfg      config.RequestConfig
	opts     Options
}

func NewRequester(executor PromptExecutor, prompts *prompt.Registry, cfg config.RequestConfig, opts Options) *Requester {
	return &Requester{
		executor: executor,
		prompts:  prompts,
		cfg:      cfg,
		opts:     opts,
	}
}

// Config returns the generation parameters used for every request.
func (r *Requester) Config() config.RequestConfig {
	return r.cfg
}

// Summarize requests a summary of the filing at req.URL. Every failure is
// returned as a *SummarizationError.
func (r *Requester) Summarize(ctx context.Context, req Request) (Result, error) {
	log := logging.For("summary").WithFields(logrus.Fields{
		"url":   req.URL,
		"model": r.cfg.ModelID,
	})

	if req.URL == "" {
		return Result{}, r.fail(errors.New("url is empty"))
	}

	pt, err := r.prompts.GetPrompt(prompt.PromptIDs.SummarizeFiling)
	if err != nil {
		return Result{}, r.fail(err)
	}

	content := ""
	if r.opts.AttachContent {
		content = truncate(req.Content, r.opts.MaxContentChars)
	}
	userPrompt, err := prompt.RenderUserPrompt(pt, prompt.NewContext().
		Set("URL", req.URL).
		Set("Content", content))
	if err != nil {
		return Result{}, r.fail(fmt.Errorf("failed to render prompt: %w", err))
	}

	start := time.Now()
	text, err := r.executor.ExecutePrompt(ctx, r.cfg, userPrompt, pt.SystemPrompt)
	if err != nil {
		log.WithError(err).Error("Summarization failed")
		return Result{}, r.fail(err)
	}

	log.WithFields(logrus.Fields{
		"chars":       len(text),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Summary generated")
	return Result{Summary: text}, nil
}

func (r *Requester) fail(err error) error {
	return &SummarizationError{ModelID: r.cfg.ModelID, Err: err}
}

// truncate cuts s to at most limit bytes on a rune boundary. limit <= 0 means
// no limit.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
