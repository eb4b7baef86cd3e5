package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vitacheck/engine/pkg/providers"
)

// ItemEntry is the composite cache record for one normalized item: the two
// identifier lookups and the label fetch, each independently nil when the
// provider returned a normalized not-found.
type ItemEntry struct {
	Normalized      string
	RxCUI           *providers.RxCUI
	RxCUILooked     bool
	RxCUINegativeAt *time.Time
	SupplementID    *providers.SupplementID
	SupplementLooked     bool
	SupplementNegativeAt *time.Time
	Label           *providers.LabelResult
	LabelFetchedAt  *time.Time
	UpdatedAt       time.Time
}

// ItemMiss reports which fields of an item entry require a fresh fetch: the
// whole entry when absent, or just the stale negative fields when present
// but past NegativeStaleness (§4.5).
type ItemMiss struct {
	RxCUI      bool
	Supplement bool
	Label      bool
}

// Any reports whether at least one field needs fetching.
func (m ItemMiss) Any() bool { return m.RxCUI || m.Supplement || m.Label }

// ItemStore is the keyed store for item lookups.
type ItemStore struct {
	db *DB
}

// NewItemStore wraps db for item-lookup access.
func NewItemStore(db *DB) *ItemStore { return &ItemStore{db: db} }

// Get reads the cached entry for normalized. forceRefresh=true skips the
// read entirely and reports a full miss, per §4.5's explicit-refresh
// lifecycle. A missing row is a full miss. A present row's negative fields
// older than NegativeStaleness are reported as partial misses; positive
// fields never expire.
func (s *ItemStore) Get(ctx context.Context, normalized string, forceRefresh bool) (*ItemEntry, ItemMiss, error) {
	if forceRefresh {
		return nil, ItemMiss{RxCUI: true, Supplement: true, Label: true}, nil
	}

	s.db.mu.RLock()
	row := s.db.sql.QueryRowContext(ctx, `
		SELECT normalized, rxcui, rxcui_negative_at, supplement_id, supplement_negative_at,
		       label_json, label_fetched_at, updated_at
		FROM item_cache WHERE normalized = ?`, normalized)

	var (
		rxcui, supplementID, labelJSON             sql.NullString
		rxcuiNegAt, supplementNegAt, labelFetchedAt sql.NullInt64
		updatedAt                                   int64
	)
	err := row.Scan(&normalized, &rxcui, &rxcuiNegAt, &supplementID, &supplementNegAt, &labelJSON, &labelFetchedAt, &updatedAt)
	s.db.mu.RUnlock()

	if err == sql.ErrNoRows {
		return nil, ItemMiss{RxCUI: true, Supplement: true, Label: true}, nil
	}
	if err != nil {
		return nil, ItemMiss{}, fmt.Errorf("read item cache for %q: %w", normalized, err)
	}

	entry := &ItemEntry{Normalized: normalized, UpdatedAt: time.Unix(updatedAt, 0)}
	var miss ItemMiss

	if rxcui.Valid {
		v := providers.RxCUI(rxcui.String)
		entry.RxCUI = &v
	} else if rxcuiNegAt.Valid {
		entry.RxCUILooked = true
		t := time.Unix(rxcuiNegAt.Int64, 0)
		entry.RxCUINegativeAt = &t
		if time.Since(t) > NegativeStaleness {
			miss.RxCUI = true
		}
	} else {
		miss.RxCUI = true
	}

	if supplementID.Valid {
		v := providers.SupplementID(supplementID.String)
		entry.SupplementID = &v
	} else if supplementNegAt.Valid {
		entry.SupplementLooked = true
		t := time.Unix(supplementNegAt.Int64, 0)
		entry.SupplementNegativeAt = &t
		if time.Since(t) > NegativeStaleness {
			miss.Supplement = true
		}
	} else {
		miss.Supplement = true
	}

	if labelJSON.Valid {
		var lr providers.LabelResult
		if err := json.Unmarshal([]byte(labelJSON.String), &lr); err != nil {
			return nil, ItemMiss{}, fmt.Errorf("decode cached label for %q: %w", normalized, err)
		}
		entry.Label = &lr
		if labelFetchedAt.Valid {
			t := time.Unix(labelFetchedAt.Int64, 0)
			entry.LabelFetchedAt = &t
		}
	} else if labelFetchedAt.Valid {
		t := time.Unix(labelFetchedAt.Int64, 0)
		entry.LabelFetchedAt = &t
		if time.Since(t) > NegativeStaleness {
			miss.Label = true
		}
	} else {
		miss.Label = true
	}

	return entry, miss, nil
}

// Put upserts the full item entry.
func (s *ItemStore) Put(ctx context.Context, entry *ItemEntry) error {
	var rxcui, supplementID, labelJSON sql.NullString
	var rxcuiNegAt, supplementNegAt, labelFetchedAt sql.NullInt64

	if entry.RxCUI != nil {
		rxcui = sql.NullString{String: string(*entry.RxCUI), Valid: true}
	} else if entry.RxCUINegativeAt != nil {
		rxcuiNegAt = sql.NullInt64{Int64: entry.RxCUINegativeAt.Unix(), Valid: true}
	}

	if entry.SupplementID != nil {
		supplementID = sql.NullString{String: string(*entry.SupplementID), Valid: true}
	} else if entry.SupplementNegativeAt != nil {
		supplementNegAt = sql.NullInt64{Int64: entry.SupplementNegativeAt.Unix(), Valid: true}
	}

	if entry.Label != nil {
		data, err := json.Marshal(entry.Label)
		if err != nil {
			return fmt.Errorf("encode label for %q: %w", entry.Normalized, err)
		}
		labelJSON = sql.NullString{String: string(data), Valid: true}
	}
	if entry.LabelFetchedAt != nil {
		labelFetchedAt = sql.NullInt64{Int64: entry.LabelFetchedAt.Unix(), Valid: true}
	}

	_, err := execContext(ctx, s.db, `
		INSERT INTO item_cache (normalized, rxcui, rxcui_negative_at, supplement_id, supplement_negative_at,
		                         label_json, label_fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(normalized) DO UPDATE SET
			rxcui = excluded.rxcui,
			rxcui_negative_at = excluded.rxcui_negative_at,
			supplement_id = excluded.supplement_id,
			supplement_negative_at = excluded.supplement_negative_at,
			label_json = excluded.label_json,
			label_fetched_at = excluded.label_fetched_at,
			updated_at = excluded.updated_at
	`, entry.Normalized, rxcui, rxcuiNegAt, supplementID, supplementNegAt, labelJSON, labelFetchedAt, unixNow())
	if err != nil {
		return fmt.Errorf("write item cache for %q: %w", entry.Normalized, err)
	}
	return nil
}
