// Package hallucination implements the backend-agnostic filtering stage
// that runs after every STT engine: NFKC-normalize and casefold the
// utterance text, then reject it if it matches a known hallucination
// phrase or if the backend reported a high no-speech probability.
package hallucination

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/erikh/hoover/internal/stt"
)

// defaultNoSpeechThreshold matches the threshold whisper.rs applied
// inline; promoted here so every backend is filtered the same way.
const defaultNoSpeechThreshold = 0.6

var blacklist = []*regexp.Regexp{
	regexp.MustCompile(`^[\s\-_.]*$`),
	regexp.MustCompile(`^\[?(music|applause|silence|keyboard|typing|clicking)\]?$`),
	regexp.MustCompile(`^\(?(music|applause|silence|keyboard|typing|clicking)\)?$`),
	regexp.MustCompile(`^thank you\.$`),
}

// Filter rejects utterances that look like STT hallucinations.
type Filter struct {
	noSpeechThreshold float32
}

// New builds a Filter with the given no-speech-probability threshold;
// pass 0 to use the default of 0.6.
func New(noSpeechThreshold float32) *Filter {
	if noSpeechThreshold <= 0 {
		noSpeechThreshold = defaultNoSpeechThreshold
	}
	return &Filter{noSpeechThreshold: noSpeechThreshold}
}

// Apply returns the subset of utterances that pass the filter.
func (f *Filter) Apply(utterances []stt.Utterance) []stt.Utterance {
	out := make([]stt.Utterance, 0, len(utterances))
	for _, u := range utterances {
		if f.Reject(u) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Reject reports whether a single utterance should be dropped.
func (f *Filter) Reject(u stt.Utterance) bool {
	if u.NoSpeechProb >= f.noSpeechThreshold {
		return true
	}
	normalized := normalize(u.Text)
	if normalized == "" {
		return true
	}
	for _, re := range blacklist {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// normalize applies NFKC normalization then casefolds via ToLower, the
// same "unicode-normalized, casefolded" comparison basis the overlap
// deduplicator uses.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
