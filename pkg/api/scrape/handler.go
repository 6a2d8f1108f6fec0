// Package scrape provides the HTTP handlers behind the scrape page.
// Every request gets its own controller; no state survives a request.
package scrape

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"secrawler/pkg/core/logging"
	coreScrape "secrawler/pkg/core/scrape"
	"secrawler/pkg/core/store"
	"secrawler/pkg/core/utils"
)

// RunStore persists audit rows (store.RunsRepo). A nil store disables
// auditing.
type RunStore interface {
	Record(ctx context.Context, run store.ScrapeRun) error
	Recent(ctx context.Context, limit int) ([]store.ScrapeRun, error)
}

// Handler holds dependencies for scrape endpoints
type Handler struct {
	source     coreScrape.ContentSource
	summarizer coreScrape.Summarizer
	modelID    string
	recorder   RunStore
}

func NewHandler(source coreScrape.ContentSource, summarizer coreScrape.Summarizer, modelID string) *Handler {
	return &Handler{
		source:     source,
		summarizer: summarizer,
		modelID:    modelID,
	}
}

// SetRecorder enables the scrape audit log.
func (h *Handler) SetRecorder(r RunStore) {
	h.recorder = r
}

type ScrapeRequest struct {
	URL       string `json:"url"`
	Summarize bool   `json:"summarize"`
}

type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

type ScrapeResponse struct {
	RequestID   string               `json:"request_id"`
	State       coreScrape.ViewState `json:"state"`
	Notices     []Notice             `json:"notices"`
	SummaryHTML string               `json:"summary_html,omitempty"`
}

type noticeCollector struct {
	notices []Notice
}

func (n *noticeCollector) Notify(title, description string) {
	n.notices = append(n.notices, Notice{Title: title, Description: description, Variant: "destructive"})
}

// HandleScrape handles POST /api/scrape
func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	requestID := uuid.New()
	log := logging.For("api").WithFields(logrus.Fields{
		"request_id": requestID.String(),
		"url":        req.URL,
	})

	notices := &noticeCollector{notices: []Notice{}}
	ctrl := coreScrape.NewController(h.source, h.summarizer, h.modelID)
	ctrl.SetNotifier(notices)
	ctrl.SetURL(req.URL)
	ctrl.SetSummarizeEnabled(req.Summarize)

	start := time.Now()
	if err := ctrl.Scrape(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	elapsed := time.Since(start)
	state := ctrl.View()

	resp := ScrapeResponse{
		RequestID: requestID.String(),
		State:     state,
		Notices:   notices.notices,
	}
	if _, ok := ctrl.ExportSummary(); ok {
		html, err := utils.RenderHTML(*state.Summary)
		if err != nil {
			log.WithError(err).Warn("Failed to render summary markdown")
		} else {
			resp.SummaryHTML = html
		}
	}

	log.WithFields(logrus.Fields{
		"phase":       state.Phase,
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Scrape finished")

	if h.recorder != nil {
		h.record(r.Context(), log, requestID, req, state, elapsed)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) record(ctx context.Context, log *logrus.Entry, id uuid.UUID, req ScrapeRequest, state coreScrape.ViewState, elapsed time.Duration) {
	run := store.ScrapeRun{
		ID:         id,
		URL:        req.URL,
		Summarized: req.Summarize,
		DurationMs: elapsed.Milliseconds(),
	}
	if state.TextContent != nil && !strings.HasPrefix(*state.TextContent, "Error") {
		run.FetchOK = true
		run.TextBytes = len(*state.TextContent)
	}
	if state.Summary != nil && !strings.HasPrefix(*state.Summary, "Error") {
		run.SummaryOK = true
	}
	if err := h.recorder.Record(ctx, run); err != nil {
		log.WithError(err).Warn("Failed to record scrape run")
	}
}

type ExportRequest struct {
	Kind string `json:"kind"` // "content" or "summary"
	URL  string `json:"url"`
	Text string `json:"text"`
}

// HandleExport handles POST /api/export and answers with a text/plain
// attachment named after the filing URL.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		export coreScrape.Export
		ok     bool
	)
	switch req.Kind {
	case "content":
		export, ok = coreScrape.ContentExport(req.URL, req.Text)
	case "summary":
		export, ok = coreScrape.SummaryExport(req.URL, h.modelID, req.Text)
	default:
		http.Error(w, "kind must be content or summary", http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "Nothing to export", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	w.Write([]byte(export.Content))
}

// HandleRuns handles GET /api/runs?limit=N
func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.recorder == nil {
		http.Error(w, "Scrape audit log is not configured", http.StatusNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.recorder.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
