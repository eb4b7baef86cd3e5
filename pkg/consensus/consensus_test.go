package consensus

import (
	"testing"

	"vitacheck/engine/pkg/model"
)

func TestDecideEmptyIsUnknown(t *testing.T) {
	if got := Decide(nil); got != model.SeverityUnknown {
		t.Fatalf("expected unknown, got %v", got)
	}
}

func TestDecideRxNormAloneIsSevere(t *testing.T) {
	records := []model.EvidenceRecord{
		{Origin: model.OriginRxNormInteractions, Severity: model.SeveritySevere},
	}
	if got := Decide(records); got != model.SeveritySevere {
		t.Fatalf("expected severe from a high-reliability severe vote, got %v", got)
	}
}

func TestDecideLiteratureAloneCannotDriveSevere(t *testing.T) {
	records := []model.EvidenceRecord{
		{Origin: model.OriginLiteratureAI, Severity: model.SeveritySevere},
	}
	got := Decide(records)
	if got == model.SeveritySevere {
		t.Fatalf("a single low-reliability severe vote should not reach severe, got %v", got)
	}
}

func TestDecideHighReliabilityNonSevereDemotesToModerate(t *testing.T) {
	records := []model.EvidenceRecord{
		{Origin: model.OriginPairAdverseEvents, Severity: model.SeveritySevere}, // weight 0.7, severeWeight<1.5
		{Origin: model.OriginLabelWarnings, Severity: model.SeverityMild},       // high-reliability, non-severe
	}
	got := Decide(records)
	if got != model.SeverityModerate {
		t.Fatalf("expected demotion to moderate, got %v", got)
	}
}

func TestDecideNoSevereVotesPicksGreatestWeightInTieOrder(t *testing.T) {
	records := []model.EvidenceRecord{
		{Origin: model.OriginSupplementInteractions, Severity: model.SeverityMild},
		{Origin: model.OriginLiteratureAI, Severity: model.SeverityMild},
	}
	got := Decide(records)
	if got != model.SeverityMild {
		t.Fatalf("expected mild as the greatest-weight class, got %v", got)
	}
}
