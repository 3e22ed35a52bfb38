package hallucination

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erikh/hoover/internal/stt"
)

func TestRejectsBracketedNoiseWords(t *testing.T) {
	f := New(0)
	for _, text := range []string{"[music]", "(applause)", "silence", "[keyboard]", "typing", "(clicking)"} {
		assert.Truef(t, f.Reject(stt.Utterance{Text: text}), "expected %q to be rejected", text)
	}
}

func TestRejectsDashUnderscorePeriodOnlyLines(t *testing.T) {
	f := New(0)
	for _, text := range []string{"---", "___", "...", "- _ ."} {
		assert.Truef(t, f.Reject(stt.Utterance{Text: text}), "expected %q to be rejected", text)
	}
}

func TestRejectsExactThankYouPhantom(t *testing.T) {
	f := New(0)
	assert.True(t, f.Reject(stt.Utterance{Text: "Thank you."}))
	assert.False(t, f.Reject(stt.Utterance{Text: "thank you for the update."}))
}

func TestRejectsHighNoSpeechProb(t *testing.T) {
	f := New(0.5)
	assert.True(t, f.Reject(stt.Utterance{Text: "hello there", NoSpeechProb: 0.9}))
}

func TestRejectsNoSpeechProbAtExactThreshold(t *testing.T) {
	f := New(0.6)
	assert.True(t, f.Reject(stt.Utterance{Text: "hello there", NoSpeechProb: 0.6}))
}

func TestKeepsRealSpeech(t *testing.T) {
	f := New(0)
	assert.False(t, f.Reject(stt.Utterance{Text: "the quick brown fox", NoSpeechProb: 0.1}))
}

func TestApplyFiltersOnlyBadOnes(t *testing.T) {
	f := New(0)
	in := []stt.Utterance{
		{Text: "hello world"},
		{Text: "music"},
		{Text: "goodbye"},
	}
	assert.Len(t, f.Apply(in), 2)
}
