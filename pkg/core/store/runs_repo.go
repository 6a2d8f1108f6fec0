package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScrapeRun is one audited scrape: outcome flags and sizes only.
type ScrapeRun struct {
	ID         uuid.UUID `json:"id"`
	URL        string    `json:"url"`
	FetchOK    bool      `json:"fetch_ok"`
	Summarized bool      `json:"summarized"`
	SummaryOK  bool      `json:"summary_ok"`
	TextBytes  int       `json:"text_bytes"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

const schema = `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id          UUID PRIMARY KEY,
		url         TEXT NOT NULL,
		fetch_ok    BOOLEAN NOT NULL,
		summarized  BOOLEAN NOT NULL,
		summary_ok  BOOLEAN NOT NULL,
		text_bytes  INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// RunsRepo stores ScrapeRun rows.
type RunsRepo struct {
	pool *pgxpool.Pool
}

func NewRunsRepo(pool *pgxpool.Pool) *RunsRepo {
	return &RunsRepo{pool: pool}
}

// EnsureSchema creates the scrape_runs table if needed.
func (r *RunsRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create scrape_runs: %w", err)
	}
	return nil
}

// Record inserts run, assigning an ID and timestamp when missing.
func (r *RunsRepo) Record(ctx context.Context, run ScrapeRun) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO scrape_runs (id, url, fetch_ok, summarized, summary_ok, text_bytes, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.URL, run.FetchOK, run.Summarized, run.SummaryOK, run.TextBytes, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record scrape run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, newest first.
func (r *RunsRepo) Recent(ctx context.Context, limit int) ([]ScrapeRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, url, fetch_ok, summarized, summary_ok, text_bytes, duration_ms, created_at
		FROM scrape_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[ScrapeRun])
	if err != nil {
		return nil, fmt.Errorf("failed to scan scrape runs: %w", err)
	}
	return runs, nil
}
