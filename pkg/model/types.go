// Package model holds the data shapes shared across the pipeline: the
// closed Severity tag set, the uniform EvidenceRecord produced by
// standardizers, and the three report shapes returned to callers (§3).
package model

import (
	"strings"
	"time"
)

// Severity is a closed tag set with a fixed total order
// unknown < none < mild < moderate < severe. "Unknown" means evidence was
// insufficient to decide; "none" means at least one primary source looked
// and found nothing — the two are distinct.
type Severity string

const (
	SeverityUnknown  Severity = "unknown"
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

var severityRank = map[Severity]int{
	SeverityUnknown:  0,
	SeverityNone:     1,
	SeverityMild:     2,
	SeverityModerate: 3,
	SeveritySevere:   4,
}

// Rank returns the severity's position in the total order. Unrecognized
// values rank as unknown.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return severityRank[SeverityUnknown]
}

// Max returns the greater of two severities under the total order.
func Max(a, b Severity) Severity {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// ParseSeverityToken translates a provider's own severity label via the
// fixed token map from §4.6: major|severe -> severe, moderate -> moderate,
// minor|mild -> mild, otherwise unknown.
func ParseSeverityToken(token string) Severity {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "major", "severe":
		return SeveritySevere
	case "moderate":
		return SeverityModerate
	case "minor", "mild":
		return SeverityMild
	default:
		return SeverityUnknown
	}
}

// Origin identifies the logical source family of an evidence record.
type Origin string

const (
	OriginRxNormInteractions       Origin = "rxnorm_interactions"
	OriginPairAdverseEvents        Origin = "pair_adverse_events"
	OriginSupplementInteractions   Origin = "supplement_interactions"
	OriginLabelWarnings            Origin = "label_warnings"
	OriginLiteratureAI             Origin = "literature_ai"
	OriginSingleDrugAdverseEvents  Origin = "single_drug_adverse_events"
)

// PrimaryOrigins are the sources that directly test for an interaction
// between a pair. Label warnings and literature are secondary.
var PrimaryOrigins = map[Origin]bool{
	OriginRxNormInteractions:     true,
	OriginPairAdverseEvents:      true,
	OriginSupplementInteractions: true,
}

// DenominatorMethod records how an exposure denominator was derived for a
// rate calculation.
type DenominatorMethod string

const (
	DenominatorMinOfPair     DenominatorMethod = "min_of_pair"
	DenominatorSingleDrugA   DenominatorMethod = "single_drug_a"
	DenominatorSingleDrugB   DenominatorMethod = "single_drug_b"
)

// Stats carries adverse-event totals and derived rates, when known.
type Stats struct {
	TotalEvents       int               `json:"totalEvents,omitempty"`
	SeriousEvents     int               `json:"seriousEvents,omitempty"`
	Beneficiaries     int               `json:"beneficiaries,omitempty"`
	EventRate         float64           `json:"eventRate,omitempty"`
	SeriousEventRate  float64           `json:"seriousEventRate,omitempty"`
	DenominatorMethod DenominatorMethod `json:"denominatorMethod,omitempty"`
}

// EvidenceRecord is the uniform shape produced by standardizers (§3).
type EvidenceRecord struct {
	Origin     Origin            `json:"origin"`
	Severity   Severity          `json:"severity"`
	Confidence float64           `json:"confidence"`
	Summary    string            `json:"summary"`
	Details    map[string]any    `json:"details,omitempty"`
	Citations  []string          `json:"citations,omitempty"`
	Stats      *Stats            `json:"stats,omitempty"`
	ObservedAt time.Time         `json:"observedAt"`
}

// NormalizedItemView is the public (normalized, original) pair returned in
// a response's items[] list.
type NormalizedItemView struct {
	Normalized string `json:"normalized"`
	Original   string `json:"original"`
}

// PairReport is the consensus result for a single unordered pair.
type PairReport struct {
	AOriginal  string           `json:"aOriginal"`
	BOriginal  string           `json:"bOriginal"`
	Severity   Severity         `json:"severity"`
	Confidence float64          `json:"confidence"`
	Sources    []EvidenceRecord `json:"sources"`
	Summary    string           `json:"summary"`
	KeyNotes   []string         `json:"keyNotes,omitempty"`
}

// SingleReport is the per-item result: any single-drug adverse-event
// signal combined with the cached label warning.
type SingleReport struct {
	Original   string           `json:"original"`
	Severity   Severity         `json:"severity"`
	Confidence float64          `json:"confidence"`
	Sources    []EvidenceRecord `json:"sources"`
	Summary    string           `json:"summary"`
}

// TripleReport is the consensus result for an unordered triple, derived
// entirely from the union of its three constituent pairs' sources.
type TripleReport struct {
	AOriginal  string           `json:"aOriginal"`
	BOriginal  string           `json:"bOriginal"`
	COriginal  string           `json:"cOriginal"`
	Severity   Severity         `json:"severity"`
	Confidence float64          `json:"confidence"`
	Sources    []EvidenceRecord `json:"sources"`
	Summary    string           `json:"summary"`
	KeyNotes   []string         `json:"keyNotes,omitempty"`
}
