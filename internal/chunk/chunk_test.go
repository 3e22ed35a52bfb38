package chunk

import "testing"

func makeSamples(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(i % 100)
	}
	return s
}

func TestFeedEmitsOverlappingWindows(t *testing.T) {
	c := New(100, 1.0, 0.2, 0.5) // window=100, overlap=20, minFlush=50
	chunks := c.Feed(makeSamples(250))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Samples) != 100 {
			t.Fatalf("chunk %d has %d samples, want 100", i, len(ch.Samples))
		}
		if ch.Seq != uint64(i) {
			t.Fatalf("chunk %d has seq %d, want %d", i, ch.Seq, i)
		}
	}
}

func TestFlushBelowMinFlushIsDropped(t *testing.T) {
	c := New(100, 1.0, 0.2, 0.5)
	c.Feed(makeSamples(30))
	if got := c.Flush(); got != nil {
		t.Fatalf("expected nil flush below min_flush_secs, got %+v", got)
	}
}

func TestFlushAboveMinFlushEmitsFinal(t *testing.T) {
	c := New(100, 1.0, 0.2, 0.5)
	c.Feed(makeSamples(60))
	got := c.Flush()
	if got == nil {
		t.Fatal("expected a final chunk")
	}
	if !got.Final {
		t.Fatal("expected Final=true")
	}
	if len(got.Samples) != 60 {
		t.Fatalf("got %d samples, want 60", len(got.Samples))
	}
}
