// Package standardize implements the per-provider-family standardizers
// (C6): pure, deterministic functions turning a provider's raw result into
// the uniform model.EvidenceRecord shape, grounded in mechanism on the
// teacher's provider transform.go files (one transform function per
// upstream shape, translating a foreign vocabulary into a shared one).
package standardize

import (
	"fmt"
	"time"

	"vitacheck/engine/pkg/confidence"
	"vitacheck/engine/pkg/model"
	"vitacheck/engine/pkg/providers"
)

// RxNormInteraction standardizes a matched RxNorm interaction pair result.
func RxNormInteraction(result *providers.RxNormInteractionResult) model.EvidenceRecord {
	return model.EvidenceRecord{
		Origin:     model.OriginRxNormInteractions,
		Severity:   model.ParseSeverityToken(result.SeverityLabel),
		Confidence: confidence.BaseConfidence(model.OriginRxNormInteractions),
		Summary:    result.Description,
		Citations:  []string{result.Source},
		ObservedAt: time.Now(),
	}
}

// SupplementInteractions standardizes the supplement database's interaction
// list for a pair into a single record; when multiple entries are present
// the most severe governs and the longest description becomes the summary.
func SupplementInteractions(entries []providers.SupplementInteraction) model.EvidenceRecord {
	rec := model.EvidenceRecord{
		Origin:     model.OriginSupplementInteractions,
		Confidence: confidence.BaseConfidence(model.OriginSupplementInteractions),
		ObservedAt: time.Now(),
	}
	for _, e := range entries {
		rec.Severity = model.Max(rec.Severity, model.ParseSeverityToken(e.SeverityLabel))
		if len(e.Description) > len(rec.Summary) {
			rec.Summary = e.Description
		}
	}
	return rec
}

// LabelWarnings standardizes a label fetch. FDA label warnings are always
// at least moderate, per §4.6, regardless of the source text's own wording.
func LabelWarnings(result *providers.LabelResult) model.EvidenceRecord {
	rec := model.EvidenceRecord{
		Origin:     model.OriginLabelWarnings,
		Severity:   model.SeverityModerate,
		Confidence: confidence.BaseConfidence(model.OriginLabelWarnings),
		ObservedAt: time.Now(),
	}
	if len(result.Warnings) == 0 {
		rec.Summary = fmt.Sprintf("no unfiltered warnings found for %s", result.ProductName)
		return rec
	}
	rec.Summary = result.Warnings[0]
	rec.Details = map[string]any{"warnings": result.Warnings, "productName": result.ProductName}
	return rec
}

// AdverseEvents standardizes an adverse-event count result for either a
// pair or a single drug. Severity is derived from counts and, when an
// exposure denominator is known, from serious-event rate (§4.6); the
// denominator method is recorded only when an exposure value was supplied.
func AdverseEvents(origin model.Origin, result *providers.AdverseEventsResult, exposure *providers.ExposureResult, denominator model.DenominatorMethod) model.EvidenceRecord {
	rec := model.EvidenceRecord{
		Origin:     origin,
		Confidence: confidence.BaseConfidence(origin),
		ObservedAt: time.Now(),
		Summary:    fmt.Sprintf("%d total adverse events reported, %d serious", result.TotalEvents, result.SeriousEvents),
	}

	stats := &model.Stats{
		TotalEvents:   result.TotalEvents,
		SeriousEvents: result.SeriousEvents,
	}
	if exposure != nil && exposure.Beneficiaries > 0 {
		stats.Beneficiaries = exposure.Beneficiaries
		stats.DenominatorMethod = denominator
		stats.EventRate = float64(result.TotalEvents) / float64(exposure.Beneficiaries)
		stats.SeriousEventRate = float64(result.SeriousEvents) / float64(exposure.Beneficiaries)
	}
	rec.Stats = stats

	rec.Severity = adverseEventSeverity(stats)
	return rec
}

func adverseEventSeverity(s *model.Stats) model.Severity {
	bySeriousRate := model.SeverityUnknown
	if s.SeriousEventRate > 1e-2 {
		bySeriousRate = model.SeveritySevere
	} else if s.SeriousEventRate > 1e-3 {
		bySeriousRate = model.SeverityModerate
	}

	byCount := model.SeverityUnknown
	switch {
	case s.SeriousEvents > 1000:
		byCount = model.SeveritySevere
	case s.SeriousEvents > 100:
		byCount = model.SeverityModerate
	case s.SeriousEvents > 0:
		byCount = model.SeverityMild
	}

	return model.Max(byCount, bySeriousRate)
}
