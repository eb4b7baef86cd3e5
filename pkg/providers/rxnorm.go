package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vitacheck/engine/pkg/apperrors"
	"vitacheck/engine/pkg/httpclient"
)

// RxCUI is the opaque RxNorm identifier returned by a successful lookup.
type RxCUI string

// rxNormLookupResponse is the shape of the upstream RxNorm approximate-match
// response we care about.
type rxNormLookupResponse struct {
	IDGroup struct {
		RxnormID []string `json:"rxnormId"`
	} `json:"idGroup"`
}

// RxNormLookup resolves a canonical drug name to an RxCUI identifier.
// "Not found" is data=nil with an apperrors.NotFound error (§4.4).
func (a *Adapters) RxNormLookup(ctx context.Context, canonicalName string) (*RxCUI, error, bool, time.Duration) {
	start := time.Now()
	u := fmt.Sprintf("%s/approximateTerm.json?term=%s&maxEntries=1", a.Endpoints.RxNormBase, url.QueryEscape(canonicalName))

	resp, err := a.HTTP.Do(ctx, httpclient.Request{Method: "GET", URL: u, Timeout: a.Timeouts.RxNormLookup})
	if err != nil {
		if apperrors.Is(err, apperrors.Timeout) {
			return nil, err, false, time.Since(start)
		}
		return nil, apperrors.Wrap(apperrors.TransportError, "rxnorm_lookup failed", err), false, time.Since(start)
	}

	var body rxNormLookupResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}
	if len(body.IDGroup.RxnormID) == 0 {
		return nil, apperrors.New(apperrors.NotFound, "no RxCUI found"), false, time.Since(start)
	}

	id := RxCUI(body.IDGroup.RxnormID[0])
	return &id, nil, false, time.Since(start)
}

// RxNormInteractionResult is the success shape for a pair interaction
// lookup.
type RxNormInteractionResult struct {
	SeverityLabel string
	Description   string
	Source        string
}

type rxNormInteractionResponse struct {
	InteractionTypeGroup []struct {
		InteractionType []struct {
			InteractionPair []struct {
				Description string `json:"description"`
				Severity    string `json:"severity"`
			} `json:"interactionPair"`
		} `json:"interactionType"`
	} `json:"interactionTypeGroup"`
}

// RxNormInteractions probes the interaction graph for rxcuiA via a
// single-RxCUI probe (§9 Open Question: preferred over the pair-query
// strategy because it tolerates the documented 404 deprecation, mapped to
// normalized not-found) and checks whether rxcuiB appears in the result.
func (a *Adapters) RxNormInteractions(ctx context.Context, rxcuiA, rxcuiB RxCUI) (*RxNormInteractionResult, error, bool, time.Duration) {
	start := time.Now()
	u := fmt.Sprintf("%s/interaction/interaction.json?rxcui=%s", a.Endpoints.RxNormBase, url.QueryEscape(string(rxcuiA)))

	resp, err := a.HTTP.Do(ctx, httpclient.Request{Method: "GET", URL: u, Timeout: a.Timeouts.RxNormInteractions})
	if err != nil {
		if tErr, ok := err.(*apperrors.AppError); ok && tErr.Kind == apperrors.TransportError {
			// Upstream documents that RxCUIs without data return 404; this
			// is the deprecated-pair shape and counts as normalized not-found.
			// Every other transport error (any non-2xx status, a failed
			// connection) is treated the same way.
			return nil, nil, false, time.Since(start)
		}
		return nil, err, false, time.Since(start)
	}

	var body rxNormInteractionResponse
	if err := httpclient.DecodeJSON(resp, &body); err != nil {
		return nil, err, false, time.Since(start)
	}

	for _, group := range body.InteractionTypeGroup {
		for _, itype := range group.InteractionType {
			for _, pair := range itype.InteractionPair {
				if containsRxCUI(pair.Description, rxcuiB) {
					return &RxNormInteractionResult{
						SeverityLabel: pair.Severity,
						Description:   pair.Description,
						Source:        "rxnorm",
					}, nil, false, time.Since(start)
				}
			}
		}
	}
	return nil, nil, false, time.Since(start)
}

func containsRxCUI(description string, rxcui RxCUI) bool {
	return len(rxcui) > 0 && strings.Contains(description, string(rxcui))
}
