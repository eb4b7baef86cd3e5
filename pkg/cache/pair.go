package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"vitacheck/engine/pkg/model"
)

// PairStore is the keyed store for pair results, scoped by calcVersion: an
// entry written under one version is invisible to reads under another
// (§4.5). Positive entries never expire on their own; a calcVersion bump or
// explicit forceRefresh is what invalidates them.
type PairStore struct {
	db           *DB
	calcVersion  string
}

// NewPairStore wraps db for pair-result access, scoped to calcVersion.
func NewPairStore(db *DB, calcVersion string) *PairStore {
	return &PairStore{db: db, calcVersion: calcVersion}
}

// Get reads the cached report for pairKey under the store's calcVersion.
// forceRefresh=true always reports a miss without reading.
func (s *PairStore) Get(ctx context.Context, pairKey string, forceRefresh bool) (*model.PairReport, bool, error) {
	if forceRefresh {
		return nil, false, nil
	}

	s.db.mu.RLock()
	row := s.db.sql.QueryRowContext(ctx, `
		SELECT report_json FROM pair_cache WHERE pair_key = ? AND calc_version = ?`,
		pairKey, s.calcVersion)
	var reportJSON string
	err := row.Scan(&reportJSON)
	s.db.mu.RUnlock()

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read pair cache for %q: %w", pairKey, err)
	}

	var report model.PairReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, false, fmt.Errorf("decode cached pair report for %q: %w", pairKey, err)
	}
	return &report, true, nil
}

// Put upserts the pair report under the store's calcVersion.
func (s *PairStore) Put(ctx context.Context, pairKey string, report *model.PairReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode pair report for %q: %w", pairKey, err)
	}

	_, err = execContext(ctx, s.db, `
		INSERT INTO pair_cache (pair_key, calc_version, report_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pair_key, calc_version) DO UPDATE SET
			report_json = excluded.report_json,
			updated_at = excluded.updated_at
	`, pairKey, s.calcVersion, string(data), unixNow())
	if err != nil {
		return fmt.Errorf("write pair cache for %q: %w", pairKey, err)
	}
	return nil
}

// Sweep deletes pair entries from calc versions other than the store's
// current one, reclaiming space after a version bump. Intended to run on the
// cron schedule wired in pkg/cache/sweep.go.
func (s *PairStore) Sweep(ctx context.Context) (int64, error) {
	res, err := execContext(ctx, s.db, `DELETE FROM pair_cache WHERE calc_version != ?`, s.calcVersion)
	if err != nil {
		return 0, fmt.Errorf("sweep stale pair cache versions: %w", err)
	}
	return res.RowsAffected()
}
