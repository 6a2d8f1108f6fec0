package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"secrawler/pkg/core/edgar"
	"secrawler/pkg/core/store"
	"secrawler/pkg/core/summary"
)

const modelID = "googleai/gemini-2.0-flash"

type MockSource struct {
	GetFilingContentFunc func(ctx context.Context, url string) (edgar.FilingContent, error)
}

func (m *MockSource) GetFilingContent(ctx context.Context, url string) (edgar.FilingContent, error) {
	return m.GetFilingContentFunc(ctx, url)
}

type MockSummarizer struct {
	SummarizeFunc func(ctx context.Context, req summary.Request) (summary.Result, error)
}

func (m *MockSummarizer) Summarize(ctx context.Context, req summary.Request) (summary.Result, error) {
	return m.SummarizeFunc(ctx, req)
}

type MockRunStore struct {
	recorded []store.ScrapeRun
}

func (m *MockRunStore) Record(ctx context.Context, run store.ScrapeRun) error {
	m.recorded = append(m.recorded, run)
	return nil
}

func (m *MockRunStore) Recent(ctx context.Context, limit int) ([]store.ScrapeRun, error) {
	return m.recorded, nil
}

func newTestHandler(fetchErr, sumErr error) *Handler {
	source := &MockSource{GetFilingContentFunc: func(ctx context.Context, url string) (edgar.FilingContent, error) {
		if fetchErr != nil {
			return edgar.FilingContent{Text: edgar.ErrorPrefix + fetchErr.Error()}, fetchErr
		}
		return edgar.FilingContent{Text: "Revenue grew."}, nil
	}}
	summarizer := &MockSummarizer{SummarizeFunc: func(ctx context.Context, req summary.Request) (summary.Result, error) {
		if sumErr != nil {
			return summary.Result{}, sumErr
		}
		return summary.Result{Summary: "## Summary\n- **Revenue** grew"}, nil
	}}
	return NewHandler(source, summarizer, modelID)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleScrape_WithSummary(t *testing.T) {
	h := newTestHandler(nil, nil)
	runs := &MockRunStore{}
	h.SetRecorder(runs)

	rec := postJSON(t, h.HandleScrape, ScrapeRequest{URL: " https://www.sec.gov/a/filing.htm ", Summarize: true})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp ScrapeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequestID == "" {
		t.Error("missing request_id")
	}
	if resp.State.Phase != "success" || resp.State.IsLoading {
		t.Errorf("state = %+v", resp.State)
	}
	if resp.State.TextContent == nil || *resp.State.TextContent != "Revenue grew." {
		t.Errorf("text_content = %v", resp.State.TextContent)
	}
	if !strings.Contains(resp.SummaryHTML, "<strong>Revenue</strong>") {
		t.Errorf("summary_html = %q", resp.SummaryHTML)
	}
	if len(resp.Notices) != 0 {
		t.Errorf("notices = %v", resp.Notices)
	}

	if len(runs.recorded) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(runs.recorded))
	}
	run := runs.recorded[0]
	if run.URL != "https://www.sec.gov/a/filing.htm" || !run.FetchOK || !run.SummaryOK || run.TextBytes != len("Revenue grew.") {
		t.Errorf("run = %+v", run)
	}
}

func TestHandleScrape_Failures(t *testing.T) {
	tests := []struct {
		name        string
		fetchErr    error
		sumErr      error
		wantText    string
		wantSummary string
	}{
		{
			name:     "Fetch fails",
			fetchErr: errors.New("HTTP error! status: 404"),
			wantText: "Error: Could not retrieve content from URL. HTTP error! status: 404",
		},
		{
			name:        "Summary fails",
			sumErr:      errors.New("quota exceeded"),
			wantText:    "Revenue grew.",
			wantSummary: "Error generating summary: quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.fetchErr, tt.sumErr)
			rec := postJSON(t, h.HandleScrape, ScrapeRequest{URL: "https://www.sec.gov/a/filing.htm", Summarize: true})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var resp ScrapeResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.State.Phase != "error" {
				t.Errorf("phase = %s, want error", resp.State.Phase)
			}
			if resp.State.TextContent == nil || *resp.State.TextContent != tt.wantText {
				t.Errorf("text_content = %v, want %q", resp.State.TextContent, tt.wantText)
			}
			if tt.wantSummary != "" && (resp.State.Summary == nil || *resp.State.Summary != tt.wantSummary) {
				t.Errorf("summary = %v, want %q", resp.State.Summary, tt.wantSummary)
			}
			if resp.SummaryHTML != "" {
				t.Errorf("summary_html should be empty on failure, got %q", resp.SummaryHTML)
			}
			if len(resp.Notices) != 1 || resp.Notices[0].Description != "Failed to scrape or summarize content." {
				t.Errorf("notices = %+v", resp.Notices)
			}
		})
	}
}

func TestHandleScrape_BadRequests(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := postJSON(t, h.HandleScrape, ScrapeRequest{URL: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty url: status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.HandleScrape(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.HandleScrape(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d", rec.Code)
	}
}

func TestHandleExport(t *testing.T) {
	h := newTestHandler(nil, nil)
	url := "https://www.sec.gov/Archives/edgar/data/320193/aapl-20230930.htm"

	tests := []struct {
		name     string
		req      ExportRequest
		wantCode int
		wantFile string
	}{
		{"Content", ExportRequest{Kind: "content", URL: url, Text: "body"}, http.StatusOK, "aapl-20230930.txt"},
		{"Summary", ExportRequest{Kind: "summary", URL: url, Text: "sum"}, http.StatusOK, "aapl-20230930_googleai_gemini-2.0-flash_AI_Summary.txt"},
		{"Error text", ExportRequest{Kind: "content", URL: url, Text: "Error: Could not retrieve content from URL. x"}, http.StatusConflict, ""},
		{"Empty", ExportRequest{Kind: "summary", URL: url}, http.StatusConflict, ""},
		{"Unknown kind", ExportRequest{Kind: "pdf", URL: url, Text: "body"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.HandleExport, tt.req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantFile == "" {
				return
			}
			if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename=`+tt.wantFile {
				t.Errorf("Content-Disposition = %q", got)
			}
			if rec.Body.String() != tt.req.Text {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestHandleRuns(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.HandleRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("without recorder: status = %d", rec.Code)
	}

	runs := &MockRunStore{recorded: []store.ScrapeRun{{URL: "https://www.sec.gov/x.htm", FetchOK: true}}}
	h.SetRecorder(runs)
	rec = httptest.NewRecorder()
	h.HandleRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []store.ScrapeRun
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].URL != "https://www.sec.gov/x.htm" {
		t.Errorf("runs = %+v", got)
	}
}
