// Package cache implements the three keyed stores (C5): item lookups, pair
// results, and exposure (beneficiary) data. All three are backed by a single
// modernc.org/sqlite database, matching the pure-Go driver choice of the
// teacher's rate-limit state backend so the cache has no cgo dependency.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// NegativeStaleness is how long a negative item-lookup entry (identifier
// absent) remains valid before a read treats it as a partial miss requiring
// re-fetch of exactly that field (§4.5).
const NegativeStaleness = 24 * time.Hour

// DB wraps the shared SQLite connection used by all three stores.
type DB struct {
	sql *sql.DB
	mu  sync.RWMutex
}

// Open creates (or attaches to) the cache database at path, in WAL mode with
// a busy timeout, mirroring the teacher's SQLite backend settings.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{sql: sqlDB}
	if err := db.initSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return db, nil
}

func (d *DB) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS item_cache (
		normalized TEXT PRIMARY KEY,
		rxcui TEXT,
		rxcui_negative_at INTEGER,
		supplement_id TEXT,
		supplement_negative_at INTEGER,
		label_json TEXT,
		label_fetched_at INTEGER,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pair_cache (
		pair_key TEXT NOT NULL,
		calc_version TEXT NOT NULL,
		report_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (pair_key, calc_version)
	);

	CREATE TABLE IF NOT EXISTS exposure_cache (
		normalized TEXT PRIMARY KEY,
		beneficiaries INTEGER NOT NULL,
		year INTEGER,
		source_meta_json TEXT,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pair_cache_updated ON pair_cache(updated_at);
	`
	_, err := d.sql.Exec(schema)
	return err
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping verifies the underlying connection is reachable, for use as a
// readiness check.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Stats reports cumulative hit/miss counters surfaced in a response's
// cacheStats (§6): medLookupHits/Misses, pairCacheHits/Misses,
// cmsCacheHits/Misses.
type Stats struct {
	MedLookupHits   int64 `json:"medLookupHits"`
	MedLookupMisses int64 `json:"medLookupMisses"`
	PairCacheHits   int64 `json:"pairCacheHits"`
	PairCacheMisses int64 `json:"pairCacheMisses"`
	CMSCacheHits    int64 `json:"cmsCacheHits"`
	CMSCacheMisses  int64 `json:"cmsCacheMisses"`
}

// Counters accumulates Stats across a single request's lifetime. Safe for
// concurrent use from the bounded-concurrency item/pair task pools.
type Counters struct {
	mu    sync.Mutex
	stats Stats
}

// RecordItem tallies one item-cache lookup outcome.
func (c *Counters) RecordItem(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.stats.MedLookupHits++
	} else {
		c.stats.MedLookupMisses++
	}
}

// RecordPair tallies one pair-cache lookup outcome.
func (c *Counters) RecordPair(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.stats.PairCacheHits++
	} else {
		c.stats.PairCacheMisses++
	}
}

// RecordExposure tallies one exposure-cache lookup outcome.
func (c *Counters) RecordExposure(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.stats.CMSCacheHits++
	} else {
		c.stats.CMSCacheMisses++
	}
}

// Snapshot returns the accumulated stats.
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func unixNow() int64 { return time.Now().Unix() }

func execContext(ctx context.Context, db *DB, query string, args ...any) (sql.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sql.ExecContext(ctx, query, args...)
}
