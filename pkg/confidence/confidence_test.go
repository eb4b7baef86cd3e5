package confidence

import (
	"testing"

	"vitacheck/engine/pkg/model"
)

func TestAggregatePairCapsAtZeroWithNoPrimary(t *testing.T) {
	got := AggregatePair(PairInputs{
		Records:                []model.EvidenceRecord{{Origin: model.OriginLiteratureAI, Confidence: 0.9}},
		PrimaryRanSuccessfully: false,
	})
	if got != 0 {
		t.Fatalf("expected 0 when no primary ran, got %v", got)
	}
}

func TestAggregatePairBaselineByCount(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{1, 0.30},
		{2, 0.50},
		{3, 0.70},
		{5, 0.70},
	}
	for _, c := range cases {
		got := AggregatePair(PairInputs{PrimaryRanSuccessfully: true, PrimarySuccessCount: c.count})
		if got != c.want {
			t.Errorf("count=%d: expected %v, got %v", c.count, c.want, got)
		}
	}
}

func TestAggregatePairNeverReachesOne(t *testing.T) {
	records := []model.EvidenceRecord{
		{Origin: model.OriginRxNormInteractions, Severity: model.SeveritySevere, Confidence: 0.85,
			Stats: &model.Stats{Beneficiaries: 1_000_000, TotalEvents: 5000, EventRate: 0.1, SeriousEventRate: 0.1}},
	}
	got := AggregatePair(PairInputs{Records: records, PrimaryRanSuccessfully: true, PrimarySuccessCount: 1})
	if got > MaxConfidence {
		t.Fatalf("expected confidence capped at %v, got %v", MaxConfidence, got)
	}
}

func TestAdjustRecordUnknownSeverityDiscounted(t *testing.T) {
	r := model.EvidenceRecord{Origin: model.OriginLiteratureAI, Severity: model.SeverityUnknown, Confidence: 0.60}
	got := AdjustRecord(r)
	if got != 0.42 {
		t.Fatalf("expected 0.60*0.7=0.42, got %v", got)
	}
}

func TestAdjustRecordSmallEventCountPenalized(t *testing.T) {
	r := model.EvidenceRecord{
		Origin:     model.OriginPairAdverseEvents,
		Severity:   model.SeverityMild,
		Confidence: 0.65,
		Stats:      &model.Stats{TotalEvents: 3},
	}
	got := AdjustRecord(r)
	if got >= 0.65 {
		t.Fatalf("expected a penalty for totalEvents<10, got %v", got)
	}
}
