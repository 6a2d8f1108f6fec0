package edgar

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"secrawler/pkg/core/logging"
)

// Sentinel lines that delimit the flattened text of every table.
const (
	TableStartSentinel = "======== TABLE START ========"
	TableEndSentinel   = "========= TABLE END ========="
)

var (
	tableOpenRe  = regexp.MustCompile(`(?i)<table`)
	tableCloseRe = regexp.MustCompile(`(?i)</table>`)
)

// TextExtractor flattens filing HTML to plain text, marking table
// boundaries with sentinel lines.
type TextExtractor struct {
	tableCount int
}

// NewTextExtractor creates a new extractor instance
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// InsertTableSentinels scans the raw markup for table tags (case-insensitive,
// literal match) and puts a start line before every opening tag and an end
// line after every closing tag. It works on text, not on a parsed tree, so
// a tag broken up by whitespace (e.g. "< table") is not recognised.
func (e *TextExtractor) InsertTableSentinels(html string) string {
	e.tableCount = len(tableOpenRe.FindAllStringIndex(html, -1))

	html = tableOpenRe.ReplaceAllStringFunc(html, func(tag string) string {
		return "\n" + TableStartSentinel + "\n" + tag
	})
	return tableCloseRe.ReplaceAllStringFunc(html, func(tag string) string {
		return tag + "\n" + TableEndSentinel + "\n"
	})
}

// ExtractText returns the visible text of html with sentinel lines around
// each table. Malformed markup is parsed on a best-effort basis; this never
// fails.
func (e *TextExtractor) ExtractText(html string) string {
	annotated := e.InsertTableSentinels(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(annotated))
	if err != nil {
		// x/net/html only errors on reader failures; a strings.Reader has none.
		logging.For("edgar").WithError(err).Warn("Failed to parse HTML, returning empty text")
		return ""
	}

	e.RemoveNoise(doc)
	return doc.Text()
}

// RemoveNoise strips elements whose text is never rendered.
func (e *TextExtractor) RemoveNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript, template").Remove()
}

// TableCount returns the number of opening table tags seen by the last call
func (e *TextExtractor) TableCount() int {
	return e.tableCount
}
