// Package edgar turns SEC EDGAR filing documents into plain text.
//
// This package uses the following external libraries:
//   - github.com/PuerkitoBio/goquery: HTML parsing and text flattening
package edgar

import (
	"context"

	"github.com/sirupsen/logrus"

	"secrawler/pkg/core/logging"
)

// ErrorPrefix starts the text of every failed FilingContent.
const ErrorPrefix = "Error: Could not retrieve content from URL. "

// FilingContent is the plain-text result of a fetch+extract run.
type FilingContent struct {
	Text string `json:"text_content"`
}

// DocumentFetcher retrieves raw markup for a URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper combines fetching and text extraction.
type Scraper struct {
	fetcher DocumentFetcher
}

func NewScraper(fetcher DocumentFetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// GetFilingContent fetches url and flattens it to text. On failure the
// returned content holds a human-readable "Error: ..." message and the
// underlying error is returned alongside it.
func (s *Scraper) GetFilingContent(ctx context.Context, url string) (FilingContent, error) {
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logging.For("edgar").WithError(err).WithField("url", url).Error("Failed to scrape SEC filing content")
		return FilingContent{Text: ErrorPrefix + err.Error()}, err
	}

	extractor := NewTextExtractor()
	text := extractor.ExtractText(html)

	logging.For("edgar").WithFields(logrus.Fields{
		"url":        url,
		"html_bytes": len(html),
		"text_bytes": len(text),
		"tables":     extractor.TableCount(),
	}).Info("Extracted filing text")

	return FilingContent{Text: text}, nil
}
