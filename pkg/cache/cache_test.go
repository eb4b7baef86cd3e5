package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/providers"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open test cache db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestItemStoreMissWhenAbsent(t *testing.T) {
	store := NewItemStore(newTestDB(t))
	entry, miss, err := store.Get(context.Background(), "ibuprofen", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Fatal("expected nil entry for absent key")
	}
	if !miss.Any() || !miss.RxCUI || !miss.Supplement || !miss.Label {
		t.Fatalf("expected full miss, got %+v", miss)
	}
}

func TestItemStoreHitAfterPut(t *testing.T) {
	store := NewItemStore(newTestDB(t))
	rxcui := providers.RxCUI("5640")
	entry := &ItemEntry{Normalized: "ibuprofen", RxCUI: &rxcui}

	if err := store.Put(context.Background(), entry); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, miss, err := store.Get(context.Background(), "ibuprofen", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.RxCUI == nil || *got.RxCUI != "5640" {
		t.Fatalf("expected cached RxCUI 5640, got %+v", got)
	}
	if miss.RxCUI {
		t.Error("expected no miss for a fresh positive rxcui field")
	}
}

func TestItemStoreNegativeEntryStalenessTriggersPartialMiss(t *testing.T) {
	store := NewItemStore(newTestDB(t))
	stale := time.Now().Add(-25 * time.Hour)
	entry := &ItemEntry{Normalized: "obscure-herb", RxCUINegativeAt: &stale}

	if err := store.Put(context.Background(), entry); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	_, miss, err := store.Get(context.Background(), "obscure-herb", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !miss.RxCUI {
		t.Error("expected a 25h-stale negative entry to report a partial miss")
	}
}

func TestItemStoreFreshNegativeEntryIsNotAMiss(t *testing.T) {
	store := NewItemStore(newTestDB(t))
	fresh := time.Now().Add(-1 * time.Hour)
	entry := &ItemEntry{Normalized: "obscure-herb", RxCUINegativeAt: &fresh}

	if err := store.Put(context.Background(), entry); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	_, miss, err := store.Get(context.Background(), "obscure-herb", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if miss.RxCUI {
		t.Error("expected a fresh negative entry to not require re-fetch")
	}
}

func TestItemStoreForceRefreshAlwaysMisses(t *testing.T) {
	store := NewItemStore(newTestDB(t))
	rxcui := providers.RxCUI("5640")
	if err := store.Put(context.Background(), &ItemEntry{Normalized: "ibuprofen", RxCUI: &rxcui}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	entry, miss, err := store.Get(context.Background(), "ibuprofen", true)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry != nil {
		t.Fatal("expected forceRefresh to bypass the cached entry")
	}
	if !miss.Any() {
		t.Fatal("expected forceRefresh to report a full miss")
	}
}

func TestPairStoreScopedToCalcVersion(t *testing.T) {
	db := newTestDB(t)
	v1 := NewPairStore(db, "v1")
	v2 := NewPairStore(db, "v2")

	report := &model.PairReport{AOriginal: "ibuprofen", BOriginal: "warfarin", Severity: model.SeveritySevere}
	if err := v1.Put(context.Background(), "ibuprofen::warfarin", report); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, hit, err := v1.Get(context.Background(), "ibuprofen::warfarin", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !hit || got == nil || got.Severity != model.SeveritySevere {
		t.Fatalf("expected a v1 hit, got hit=%v report=%+v", hit, got)
	}

	_, hit, err = v2.Get(context.Background(), "ibuprofen::warfarin", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if hit {
		t.Error("expected a v1 entry to be invisible to a v2 read")
	}
}

func TestPairStoreSweepRemovesOtherVersions(t *testing.T) {
	db := newTestDB(t)
	v1 := NewPairStore(db, "v1")
	v2 := NewPairStore(db, "v2")

	report := &model.PairReport{AOriginal: "ibuprofen", BOriginal: "warfarin"}
	if err := v1.Put(context.Background(), "ibuprofen::warfarin", report); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	deleted, err := v2.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 stale entry removed, got %d", deleted)
	}

	_, hit, err := v1.Get(context.Background(), "ibuprofen::warfarin", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if hit {
		t.Error("expected the v1 entry to have been swept by a v2-scoped sweep")
	}
}

func TestExposureStoreNeverFabricatesMissingEntry(t *testing.T) {
	store := NewExposureStore(newTestDB(t))
	result, hit, err := store.Get(context.Background(), "ibuprofen", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if hit || result != nil {
		t.Fatal("expected a clean miss for an uncached exposure lookup")
	}
}

func TestExposureStoreRoundTrip(t *testing.T) {
	store := NewExposureStore(newTestDB(t))
	want := &providers.ExposureResult{Beneficiaries: 1000, Year: 2024}
	if err := store.Put(context.Background(), "ibuprofen", want); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, hit, err := store.Get(context.Background(), "ibuprofen", false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !hit || got.Beneficiaries != 1000 || got.Year != 2024 {
		t.Fatalf("expected round-tripped exposure result, got %+v", got)
	}
}
