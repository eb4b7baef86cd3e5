package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/httpclient"
	"vitacheck/engine/pkg/model"
)

type literatureResponse struct {
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
	Citations  []string `json:"citations"`
}

// LiteratureAI queries the literature-synthesis provider for a pair and
// returns an already-standardized EvidenceRecord — unlike the other five
// providers, this adapter performs its own standardization upstream.
// Without an API key it returns apperrors.MissingCredential; data=nil,
// err=nil when the provider answers with no severity (no record produced).
func (a *Adapters) LiteratureAI(ctx context.Context, aName, bName string) (*model.EvidenceRecord, error, bool, time.Duration) {
	start := time.Now()
	if a.Credentials.LiteratureAIAPIKey == "" {
		return nil, apperrors.New(apperrors.MissingCredential, "literature_ai credential not configured"), false, time.Since(start)
	}

	q := url.Values{}
	q.Set("a", aName)
	q.Set("b", bName)
	u := fmt.Sprintf("%s/synthesize?%s", a.Endpoints.LiteratureAIBase, q.Encode())

	resp, err := a.HTTP.Do(ctx, httpclient.Request{
		Method:  "GET",
		URL:     u,
		Timeout: a.Timeouts.LiteratureAI,
		Headers: map[string]string{"Authorization": "Bearer " + a.Credentials.LiteratureAIAPIKey},
	})
	if err != nil {
		return nil, err, false, time.Since(start)
	}

	var body literatureResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}
	if body.Severity == "" {
		return nil, nil, false, time.Since(start)
	}

	return &model.EvidenceRecord{
		Origin:     model.OriginLiteratureAI,
		Severity:   model.ParseSeverityToken(body.Severity),
		Confidence: clamp01(body.Confidence),
		Summary:    body.Summary,
		Citations:  body.Citations,
		ObservedAt: time.Now(),
	}, nil, false, time.Since(start)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
