package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/httpclient"
)

// SupplementID is the opaque identifier returned by the supplement
// database's lookup endpoint.
type SupplementID string

type supplementLookupResponse struct {
	ID string `json:"id"`
}

// SupplementLookup resolves a canonical name to a supplement database
// identifier. Requires a credential; returns apperrors.MissingCredential
// when absent rather than failing the request.
func (a *Adapters) SupplementLookup(ctx context.Context, canonicalName string) (*SupplementID, error, bool, time.Duration) {
	start := time.Now()
	if a.Credentials.SupplementAPIKey == "" {
		return nil, apperrors.New(apperrors.MissingCredential, "supplement credential not configured"), false, time.Since(start)
	}

	u := fmt.Sprintf("%s/lookup?name=%s", a.Endpoints.SupplementBase, url.QueryEscape(canonicalName))
	resp, err := a.HTTP.Do(ctx, httpclient.Request{
		Method:  "GET",
		URL:     u,
		Timeout: a.Timeouts.Supplement,
		Headers: map[string]string{"Authorization": "Bearer " + a.Credentials.SupplementAPIKey},
	})
	if err != nil {
		return nil, err, false, time.Since(start)
	}

	var body supplementLookupResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}
	if body.ID == "" {
		return nil, nil, false, time.Since(start)
	}
	id := SupplementID(body.ID)
	return &id, nil, false, time.Since(start)
}

// SupplementInteraction is one raw interaction entry from the supplement
// database.
type SupplementInteraction struct {
	SeverityLabel string `json:"severity"`
	Description   string `json:"description"`
}

type supplementInteractionResponse struct {
	Interactions []SupplementInteraction `json:"interactions"`
}

// SupplementInteractions fetches known interactions for one or two
// supplement identifiers / canonical names.
func (a *Adapters) SupplementInteractions(ctx context.Context, aName, bName string, aID, bID *SupplementID) ([]SupplementInteraction, error, bool, time.Duration) {
	start := time.Now()
	if a.Credentials.SupplementAPIKey == "" {
		return nil, apperrors.New(apperrors.MissingCredential, "supplement credential not configured"), false, time.Since(start)
	}

	q := url.Values{}
	q.Set("a", aName)
	q.Set("b", bName)
	if aID != nil {
		q.Set("aId", string(*aID))
	}
	if bID != nil {
		q.Set("bId", string(*bID))
	}
	u := fmt.Sprintf("%s/interactions?%s", a.Endpoints.SupplementBase, q.Encode())

	resp, err := a.HTTP.Do(ctx, httpclient.Request{
		Method:  "GET",
		URL:     u,
		Timeout: a.Timeouts.Supplement,
		Headers: map[string]string{"Authorization": "Bearer " + a.Credentials.SupplementAPIKey},
	})
	if err != nil {
		return nil, err, false, time.Since(start)
	}

	var body supplementInteractionResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}
	if len(body.Interactions) == 0 {
		return nil, nil, false, time.Since(start)
	}
	return body.Interactions, nil, false, time.Since(start)
}
