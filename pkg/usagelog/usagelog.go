// Package usagelog implements the append-only audit log (A6): one row per
// completed request, matching spec.md §6's persisted-state schema
// `(id, createdAt, items jsonb, summary jsonb, latencyMs, cacheHits jsonb)`.
// Grounded on the teacher's pkg/evidence/storage/sqlite.go, but backed by
// the cgo mattn/go-sqlite3 driver rather than modernc's pure-Go one —
// mirroring the teacher's own split between the two cache stores
// (pkg/limits/storage/sqlite.go uses modernc; pkg/evidence/storage/sqlite.go
// uses mattn) onto this module's two SQLite-backed stores.
package usagelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/google/uuid"

	"vitacheck/engine/pkg/cache"
	"vitacheck/engine/pkg/model"
)

// Summary is the compact per-request overview persisted alongside the full
// item list; it is not the full response, only enough to audit what kind of
// result a request produced without re-deriving it from the cache.
type Summary struct {
	SingleCount int            `json:"singleCount"`
	PairCount   int            `json:"pairCount"`
	TripleCount int            `json:"tripleCount"`
	MaxSeverity model.Severity `json:"maxSeverity"`
}

// Entry is one row of the usage log.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Items     []string
	Summary   Summary
	LatencyMs int64
	CacheHits cache.Stats
}

// Store is the append-only SQLite-backed usage log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS usage_log (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	items_json TEXT NOT NULL,
	summary_json TEXT NOT NULL,
	latency_ms INTEGER NOT NULL,
	cache_hits_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_log_created_at ON usage_log(created_at);
`

// Open creates or opens the usage-log database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open usage log db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create usage log schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Append writes one row. Callers on the request path should swallow the
// returned error per spec.md §7's "cache failures on the log table are
// swallowed" rule; Append itself always attempts the write.
func (s *Store) Append(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	itemsJSON, err := json.Marshal(e.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	summaryJSON, err := json.Marshal(e.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	cacheHitsJSON, err := json.Marshal(e.CacheHits)
	if err != nil {
		return fmt.Errorf("marshal cache hits: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO usage_log (id, created_at, items_json, summary_json, latency_ms, cache_hits_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.Unix(), string(itemsJSON), string(summaryJSON), e.LatencyMs, string(cacheHitsJSON))
	if err != nil {
		return fmt.Errorf("insert usage log row: %w", err)
	}
	return nil
}
