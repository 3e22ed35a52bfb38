package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupRemovesOverlap(t *testing.T) {
	d := New()
	assert.Equal(t, "the quick brown fox jumps", d.Dedup("the quick brown fox jumps"))
	assert.Equal(t, "over the lazy dog", d.Dedup("fox jumps over the lazy dog"))
}

func TestDedupNoOverlapKeepsFullText(t *testing.T) {
	d := New()
	d.Dedup("hello there")
	assert.Equal(t, "completely unrelated text", d.Dedup("completely unrelated text"))
}

func TestDedupSuppressedBelowMinResultTokens(t *testing.T) {
	d := New()
	d.Dedup("a b c d e")
	assert.Equal(t, "", d.Dedup("a b c d e"))
}

func TestDedupIdempotentOnRepeatedChunk(t *testing.T) {
	d := New()
	first := d.Dedup("the quick brown fox jumps over the lazy dog")
	second := d.Dedup("the quick brown fox jumps over the lazy dog")
	assert.NotEmpty(t, first)
	assert.Empty(t, second)
}

func TestDedupCaseAndUnicodeInsensitive(t *testing.T) {
	d := New()
	d.Dedup("Hello World")
	assert.Equal(t, "nice to meet you", d.Dedup("hello world nice to meet you"))
}
