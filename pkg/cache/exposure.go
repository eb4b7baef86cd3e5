package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"vitacheck/engine/pkg/providers"
)

// ExposureStore is the keyed store for beneficiary-count exposure data
// (surfaced as the cmsCacheHits/Misses counters). Exposure values are never
// fabricated: a store entry only ever records a genuine non-zero lookup.
type ExposureStore struct {
	db *DB
}

// NewExposureStore wraps db for exposure access.
func NewExposureStore(db *DB) *ExposureStore { return &ExposureStore{db: db} }

// Get reads the cached exposure result for canonicalName.
func (s *ExposureStore) Get(ctx context.Context, canonicalName string, forceRefresh bool) (*providers.ExposureResult, bool, error) {
	if forceRefresh {
		return nil, false, nil
	}

	s.db.mu.RLock()
	row := s.db.sql.QueryRowContext(ctx, `
		SELECT beneficiaries, year, source_meta_json FROM exposure_cache WHERE normalized = ?`, canonicalName)
	var (
		beneficiaries int
		year          sql.NullInt64
		sourceMeta    sql.NullString
	)
	err := row.Scan(&beneficiaries, &year, &sourceMeta)
	s.db.mu.RUnlock()

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read exposure cache for %q: %w", canonicalName, err)
	}

	result := &providers.ExposureResult{Beneficiaries: beneficiaries, Year: int(year.Int64)}
	if sourceMeta.Valid {
		if err := json.Unmarshal([]byte(sourceMeta.String), &result.SourceMeta); err != nil {
			return nil, false, fmt.Errorf("decode cached exposure source meta for %q: %w", canonicalName, err)
		}
	}
	return result, true, nil
}

// Put upserts an exposure result. Callers must not call Put with a zero or
// nil result — the provider adapter already reports "looked, found nothing"
// as (nil, nil), which the caller should simply not cache.
func (s *ExposureStore) Put(ctx context.Context, canonicalName string, result *providers.ExposureResult) error {
	var sourceMeta sql.NullString
	if result.SourceMeta != nil {
		data, err := json.Marshal(result.SourceMeta)
		if err != nil {
			return fmt.Errorf("encode exposure source meta for %q: %w", canonicalName, err)
		}
		sourceMeta = sql.NullString{String: string(data), Valid: true}
	}

	_, err := execContext(ctx, s.db, `
		INSERT INTO exposure_cache (normalized, beneficiaries, year, source_meta_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(normalized) DO UPDATE SET
			beneficiaries = excluded.beneficiaries,
			year = excluded.year,
			source_meta_json = excluded.source_meta_json,
			updated_at = excluded.updated_at
	`, canonicalName, result.Beneficiaries, result.Year, sourceMeta, unixNow())
	if err != nil {
		return fmt.Errorf("write exposure cache for %q: %w", canonicalName, err)
	}
	return nil
}
