// Package normalize canonicalizes free-text item names and derives the
// deterministic keys used to partition the cache and enumerate pairs and
// triples (C1).
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"vitacheck/engine/pkg/apperrors"
)

// MaxItems is the policy bound on the number of items in a single request.
const MaxItems = 10

const pairSeparator = "::"

// Item is a normalized input with its original spelling preserved for
// display.
type Item struct {
	Normalized string
	Original   string
}

// Canonicalize trims, lowercases, collapses internal whitespace runs to a
// single space, and normalizes whitespace around '/' so combination
// products ("amoxicillin / clavulanate", "amoxicillin/clavulanate") share a
// canonical spelling. Canonicalize is idempotent: Canonicalize(Canonicalize(s)) == Canonicalize(s).
func Canonicalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	var collapsed strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
			collapsed.WriteRune(' ')
			continue
		}
		lastWasSpace = false
		collapsed.WriteRune(r)
	}

	out := collapsed.String()
	out = strings.ReplaceAll(out, " / ", "/")
	out = strings.ReplaceAll(out, " /", "/")
	out = strings.ReplaceAll(out, "/ ", "/")
	return out
}

// Items canonicalizes a batch of original strings, enforcing the policy
// bound on count. Items fails with apperrors.InvalidInput when the input
// count is zero or exceeds MaxItems.
func Items(originals []string) ([]Item, error) {
	if len(originals) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "items must not be empty")
	}
	if len(originals) > MaxItems {
		return nil, apperrors.New(apperrors.InvalidInput, "items exceeds the maximum of 10")
	}

	items := make([]Item, 0, len(originals))
	for _, o := range originals {
		trimmed := strings.TrimSpace(o)
		if trimmed == "" {
			return nil, apperrors.New(apperrors.InvalidInput, "item value must not be empty")
		}
		items = append(items, Item{Normalized: Canonicalize(o), Original: o})
	}
	return items, nil
}

// PairKey forms the order-insensitive identifier of a pair of canonical
// values: the two values sorted ascending, joined with "::".
// PairKey(a, b) == PairKey(b, a) for all a, b.
func PairKey(a, b string) string {
	if a <= b {
		return a + pairSeparator + b
	}
	return b + pairSeparator + a
}

// Pair is an unordered pair of items, retained in a canonical (sorted) order
// so PairKey and display are consistent.
type Pair struct {
	A, B Item
}

// Key returns the pair's deterministic cache key.
func (p Pair) Key() string { return PairKey(p.A.Normalized, p.B.Normalized) }

// Triple is an unordered triple of items.
type Triple struct {
	A, B, C Item
}

// Pairs enumerates every unordered pair of the given items. No two pairs
// share the same unordered set; pair members are ordered by ascending
// canonical value so Pair.Key is stable.
func Pairs(items []Item) []Pair {
	sorted := sortedByNormalized(items)
	pairs := make([]Pair, 0, len(sorted)*(len(sorted)-1)/2)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			pairs = append(pairs, Pair{A: sorted[i], B: sorted[j]})
		}
	}
	return pairs
}

// Pairs returns the three constituent pairs of a triple.
func (t Triple) Pairs() [3]Pair {
	return [3]Pair{
		{A: t.A, B: t.B},
		{A: t.A, B: t.C},
		{A: t.B, B: t.C},
	}
}

// Triples enumerates every unordered triple of the given items by
// combinatoric expansion of the canonical set.
func Triples(items []Item) []Triple {
	sorted := sortedByNormalized(items)
	triples := make([]Triple, 0)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			for k := j + 1; k < len(sorted); k++ {
				triples = append(triples, Triple{A: sorted[i], B: sorted[j], C: sorted[k]})
			}
		}
	}
	return triples
}

func sortedByNormalized(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Normalized < out[j].Normalized })
	return out
}
