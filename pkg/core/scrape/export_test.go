package scrape

import "testing"

func TestBaseName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/filing.htm", "filing"},
		{"https://www.sec.gov/Archives/edgar/data/320193/000032019324000123/aapl-20240928.htm", "aapl-20240928"},
		{"https://example.com/dir/report.v2.txt?download=1#top", "report.v2"},
		{"https://example.com/dir/noext", "noext"},
		{"https://example.com/dir/", "dir"},
		{"https://example.com/", fallbackBaseName},
		{"https://example.com", fallbackBaseName},
		{"", fallbackBaseName},
	}

	for _, tt := range tests {
		if got := BaseName(tt.url); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestContentExport(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantOK bool
	}{
		{"Text present", "Item 1. Business", true},
		{"Empty", "", false},
		{"Error string", "Error: Could not retrieve content from URL. HTTP error! status: 404", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, ok := ContentExport("https://example.com/filing.htm", tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (exp.FileName != "filing.txt" || exp.Content != tt.text) {
				t.Errorf("unexpected export %+v", exp)
			}
		})
	}
}

func TestSummaryExport(t *testing.T) {
	exp, ok := SummaryExport("https://example.com/10k.htm", "openai/gpt-4o", "summary")
	if !ok || exp.FileName != "10k_openai_gpt-4o_AI_Summary.txt" {
		t.Errorf("SummaryExport() = %+v, %v", exp, ok)
	}

	if _, ok := SummaryExport("https://example.com/10k.htm", "openai/gpt-4o", "Error generating summary: boom"); ok {
		t.Error("error summaries must not be exportable")
	}
}
