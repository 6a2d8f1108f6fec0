// Package ingest retrieves raw filing documents over HTTP.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"secrawler/pkg/core/logging"
)

// DefaultUserAgent identifies the crawler to SEC EDGAR, which rejects
// anonymous clients.
const DefaultUserAgent = "SECrawler/1.0 (contact@example.com)"

// FetchError describes a failed document retrieval. Exactly one of
// StatusCode and Err is set.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads documents with a contact User-Agent.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewFetcher creates a fetcher. An empty userAgent falls back to
// DefaultUserAgent; a zero timeout leaves the client without one.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// NewFetcherWithClient is used by tests to inject an httptest client.
func NewFetcherWithClient(client *http.Client, userAgent string) *Fetcher {
	f := NewFetcher(userAgent, 0)
	f.httpClient = client
	return f
}

// Fetch issues a GET for url and returns the response body. Any non-2xx
// status is reported as a *FetchError carrying the code.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	log := logging.For("ingest").WithField("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Fetch failed")
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Warn("Fetch returned non-success status")
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	log.WithFields(logrus.Fields{
		"bytes":       len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Fetched document")
	return string(body), nil
}
