package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadcenter/internal/calllog"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Run is one recorded synchronization pass, kept for operator diagnosis of
// flaky upstream windows.
type Run struct {
	ID        string          `json:"id"`
	Window    Window          `json:"window"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
	Summary   calllog.Summary `json:"summary"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
}

type Recorder interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// MemoryRecorder keeps run history in process, newest first.
type MemoryRecorder struct {
	mu   sync.Mutex
	runs []Run
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(ctx context.Context, run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	r.runs = append([]Run{run}, r.runs...)
	return nil
}

func (r *MemoryRecorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]Run, limit)
	copy(out, r.runs[:limit])
	return out, nil
}

// PostgresRecorder persists run history in the sync_runs table.
//
// Expected schema:
//
//	CREATE TABLE sync_runs (
//	    id           TEXT PRIMARY KEY,
//	    window_start TIMESTAMPTZ NOT NULL,
//	    window_end   TIMESTAMPTZ NOT NULL,
//	    started_at   TIMESTAMPTZ NOT NULL,
//	    ended_at     TIMESTAMPTZ NOT NULL,
//	    total        INT NOT NULL,
//	    inserted     INT NOT NULL,
//	    updated      INT NOT NULL,
//	    errors       INT NOT NULL,
//	    status       TEXT NOT NULL,
//	    error        TEXT
//	);
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

func (r *PostgresRecorder) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	const q = `
INSERT INTO sync_runs (id, window_start, window_end, started_at, ended_at,
    total, inserted, updated, errors, status, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := r.db.ExecContext(ctx, q,
		run.ID, run.Window.Start, run.Window.End, run.StartedAt, run.EndedAt,
		run.Summary.Total, run.Summary.Inserted, run.Summary.Updated, run.Summary.Errors,
		run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, window_start, window_end, started_at, ended_at,
       total, inserted, updated, errors, status, COALESCE(error, '')
FROM sync_runs ORDER BY started_at DESC LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.Window.Start, &run.Window.End, &run.StartedAt, &run.EndedAt,
			&run.Summary.Total, &run.Summary.Inserted, &run.Summary.Updated, &run.Summary.Errors,
			&run.Status, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return out, nil
}
