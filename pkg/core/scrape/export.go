package scrape

import (
	"net/url"
	"path"
	"strings"
)

// fallbackBaseName is used when the URL has no usable last path segment.
const fallbackBaseName = "sec_filing"

// Export is a file ready to be downloaded.
type Export struct {
	FileName string
	Content  string
}

// ContentExport names the extracted text after the URL's last path segment:
// ".../filing.htm" -> "filing.txt".
func ContentExport(rawURL, text string) (Export, bool) {
	if !exportable(text) {
		return Export{}, false
	}
	return Export{FileName: BaseName(rawURL) + ".txt", Content: text}, true
}

// SummaryExport names the summary after the URL and the model:
// "filing_googleai_gemini-2.0-flash_AI_Summary.txt".
func SummaryExport(rawURL, modelID, text string) (Export, bool) {
	if !exportable(text) {
		return Export{}, false
	}
	model := strings.ReplaceAll(modelID, "/", "_")
	return Export{FileName: BaseName(rawURL) + "_" + model + "_AI_Summary.txt", Content: text}, true
}

// BaseName returns the URL's final path segment without its extension.
func BaseName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	base := path.Base(strings.TrimRight(p, "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == "/" {
		return fallbackBaseName
	}
	return base
}
