// Package scrape holds the rendering-agnostic state machine behind the
// scrape page: fetch a filing, flatten it to text, optionally summarize it,
// and export either result as a text file.
package scrape

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"secrawler/pkg/core/edgar"
	"secrawler/pkg/core/logging"
	"secrawler/pkg/core/summary"
)

// ErrScrapeInProgress is returned by Scrape while another scrape on the same
// controller has not finished.
var ErrScrapeInProgress = errors.New("a scrape is already in progress")

// FailureToast is the generic notification raised on any pipeline failure.
const FailureToast = "Failed to scrape or summarize content."

// Phase is the controller's state machine position.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// ViewState is everything the page renders.
type ViewState struct {
	URL              string  `json:"url"`
	TextContent      *string `json:"text_content"`
	Summary          *string `json:"summary"`
	IsLoading        bool    `json:"is_loading"`
	SummarizeEnabled bool    `json:"summarize_enabled"`
	Phase            Phase   `json:"phase"`
}

// ContentSource is the combined fetch+extract contract (edgar.Scraper).
type ContentSource interface {
	GetFilingContent(ctx context.Context, url string) (edgar.FilingContent, error)
}

// Summarizer is the summarization contract (summary.Requester).
type Summarizer interface {
	Summarize(ctx context.Context, req summary.Request) (summary.Result, error)
}

// Notifier surfaces toast notifications.
type Notifier interface {
	Notify(title, description string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

// Controller owns one session's ViewState.
type Controller struct {
	mu         sync.Mutex
	state      ViewState
	source     ContentSource
	summarizer Summarizer
	notifier   Notifier
	modelID    string
}

// NewController creates an idle controller. modelID names the summary
// export file.
func NewController(source ContentSource, summarizer Summarizer, modelID string) *Controller {
	return &Controller{
		state:      ViewState{Phase: PhaseIdle},
		source:     source,
		summarizer: summarizer,
		notifier:   nopNotifier{},
		modelID:    modelID,
	}
}

// SetNotifier replaces the toast sink.
func (c *Controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	c.notifier = n
}

func (c *Controller) SetURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.URL = url
}

func (c *Controller) SetSummarizeEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SummarizeEnabled = enabled
}

// View returns a copy of the current state.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scrape runs fetch -> extract -> (optional) summarize for the current URL.
// Failures end up in the view state as "Error..." strings; the returned
// error is non-nil only when a scrape was already running.
func (c *Controller) Scrape(ctx context.Context) error {
	c.mu.Lock()
	if c.state.IsLoading {
		c.mu.Unlock()
		return ErrScrapeInProgress
	}
	c.state.IsLoading = true
	c.state.Phase = PhaseLoading
	c.state.TextContent = nil
	c.state.Summary = nil
	url := c.state.URL
	summarize := c.state.SummarizeEnabled
	notifier := c.notifier
	c.mu.Unlock()

	log := logging.For("scrape").WithFields(logrus.Fields{
		"url":       url,
		"summarize": summarize,
	})

	content, err := c.source.GetFilingContent(ctx, url)
	if err != nil {
		log.WithError(err).Error("Error scraping content")
		if !strings.HasPrefix(content.Text, "Error") {
			content.Text = edgar.ErrorPrefix + err.Error()
		}
		c.finish(PhaseError, &content.Text, nil)
		notifier.Notify("Error", FailureToast)
		return nil
	}

	if !summarize {
		c.finish(PhaseSuccess, &content.Text, nil)
		return nil
	}

	// Publish the text before the model call so it is visible while loading.
	c.mu.Lock()
	c.state.TextContent = &content.Text
	c.mu.Unlock()

	result, err := c.summarizer.Summarize(ctx, summary.Request{URL: url, Content: content.Text})
	if err != nil {
		log.WithError(err).Error("Error summarizing content")
		msg := summary.ErrorText(err)
		c.finish(PhaseError, &content.Text, &msg)
		notifier.Notify("Error", FailureToast)
		return nil
	}

	c.finish(PhaseSuccess, &content.Text, &result.Summary)
	return nil
}

func (c *Controller) finish(phase Phase, text, sum *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.TextContent = text
	c.state.Summary = sum
	c.state.Phase = phase
	c.state.IsLoading = false
}

// ExportContent returns the extracted-text download, or false when there is
// no usable text.
func (c *Controller) ExportContent() (Export, bool) {
	v := c.View()
	if v.IsLoading {
		return Export{}, false
	}
	return ContentExport(v.URL, deref(v.TextContent))
}

// ExportSummary returns the summary download, or false when there is no
// usable summary.
func (c *Controller) ExportSummary() (Export, bool) {
	v := c.View()
	if v.IsLoading {
		return Export{}, false
	}
	return SummaryExport(v.URL, c.modelID, deref(v.Summary))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// exportable reports whether text is present and not an error message.
func exportable(text string) bool {
	return text != "" && !strings.HasPrefix(text, "Error")
}
