// Package dedup removes the duplicated tail/head text that appears when
// consecutive audio chunks overlap. Deduplication is fixed at whitespace
// token granularity rather than per-language tokenization, which stays an
// unimplemented extension point rather than a speculative addition.
package dedup

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxOverlapTokens bounds how far back the deduplicator will search for a
// matching suffix/prefix, so a coincidental short repeated word never
// causes runaway comparison cost.
const maxOverlapTokens = 40

// minResultTokens: if removing the overlap would leave fewer tokens than
// this, the segment is suppressed entirely rather than emitted, since a
// near-total overlap match is a repeat of the prior segment, not new speech.
const minResultTokens = 2

// Deduplicator strips the overlap between one utterance's tail and the
// next utterance's head.
type Deduplicator struct {
	prevTokens []string
}

// New returns a fresh Deduplicator with no prior context.
func New() *Deduplicator {
	return &Deduplicator{}
}

// Dedup returns text with any overlap against the previously seen text
// removed, and records text as the new context for the next call.
func (d *Deduplicator) Dedup(text string) string {
	tokens := strings.Fields(text)
	overlap := longestSuffixPrefixMatch(d.prevTokens, tokens)

	d.prevTokens = tokens

	if overlap == 0 {
		return strings.Join(tokens, " ")
	}
	if len(tokens)-overlap < minResultTokens {
		return ""
	}
	return strings.Join(tokens[overlap:], " ")
}

// Reset clears prior context, used when starting a new day's log or after
// a gap the pipeline decides is not a genuine continuation.
func (d *Deduplicator) Reset() {
	d.prevTokens = nil
}

// longestSuffixPrefixMatch finds the longest k (up to maxOverlapTokens)
// such that the last k tokens of prev, normalized, equal the first k
// tokens of cur, normalized.
func longestSuffixPrefixMatch(prev, cur []string) int {
	limit := maxOverlapTokens
	if len(prev) < limit {
		limit = len(prev)
	}
	if len(cur) < limit {
		limit = len(cur)
	}

	for k := limit; k > 0; k-- {
		if tokensEqual(prev[len(prev)-k:], cur[:k]) {
			return k
		}
	}
	return 0
}

func tokensEqual(a, b []string) bool {
	for i := range a {
		if normalizeToken(a[i]) != normalizeToken(b[i]) {
			return false
		}
	}
	return true
}

func normalizeToken(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
