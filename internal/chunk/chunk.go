// Package chunk turns a stream of drained ring-buffer samples into
// overlapping fixed-duration windows, driven by a time.Ticker on a
// fixed drain interval.
package chunk

import (
	"time"

	"github.com/erikh/hoover/internal/ring"
)

// Chunk is one windowed slab of PCM samples ready for the mel frontend
// and STT engine.
type Chunk struct {
	Seq       uint64
	Samples   []int16
	Timestamp time.Time
	Final     bool // true only for the shutdown-drain chunk
}

// Chunker accumulates drained ring samples and emits fixed-size,
// overlapping windows.
type Chunker struct {
	sampleRate   int
	windowLen    int
	overlapLen   int
	minFlushLen  int
	buf          []int16
	seq          uint64
	firstSampleAt time.Time
	haveFirst    bool
}

// New builds a Chunker windowing at chunkSecs with overlapSecs of carry-over
// between consecutive chunks, refusing to emit a final partial chunk
// shorter than minFlushSecs.
func New(sampleRate int, chunkSecs, overlapSecs, minFlushSecs float64) *Chunker {
	return &Chunker{
		sampleRate:  sampleRate,
		windowLen:   int(chunkSecs * float64(sampleRate)),
		overlapLen:  int(overlapSecs * float64(sampleRate)),
		minFlushLen: int(minFlushSecs * float64(sampleRate)),
	}
}

// Feed appends newly-drained samples and returns zero or more chunks that
// became ready as a result.
func (c *Chunker) Feed(samples []int16) []Chunk {
	if len(samples) == 0 {
		return nil
	}
	if !c.haveFirst {
		c.firstSampleAt = time.Now()
		c.haveFirst = true
	}
	c.buf = append(c.buf, samples...)

	var out []Chunk
	for len(c.buf) >= c.windowLen {
		window := make([]int16, c.windowLen)
		copy(window, c.buf[:c.windowLen])
		out = append(out, c.emit(window, false))

		advance := c.windowLen - c.overlapLen
		if advance <= 0 {
			advance = c.windowLen
		}
		c.buf = c.buf[advance:]
	}
	return out
}

// Flush emits whatever remains as a final chunk, provided it meets the
// min_flush_secs threshold; otherwise the remainder is silently dropped,
// matching the "drop rather than emit a useless sliver" edge case.
func (c *Chunker) Flush() *Chunk {
	if len(c.buf) < c.minFlushLen {
		return nil
	}
	window := make([]int16, len(c.buf))
	copy(window, c.buf)
	c.buf = nil
	ch := c.emit(window, true)
	return &ch
}

func (c *Chunker) emit(samples []int16, final bool) Chunk {
	ch := Chunk{
		Seq:       c.seq,
		Samples:   samples,
		Timestamp: time.Now(),
		Final:     final,
	}
	c.seq++
	return ch
}

// Pump wires a ring.Buffer to a Chunker on a fixed poll interval, matching
// the ticker-driven drain loop the design is grounded on; it returns a
// channel of chunks and stops when stop is closed.
func Pump(rb *ring.Buffer, c *Chunker, pollEvery time.Duration, stop <-chan struct{}) <-chan Chunk {
	out := make(chan Chunk, 4)
	go func() {
		defer close(out)
		ticker := time.NewTicker(pollEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				for _, ch := range c.Feed(rb.Drain()) {
					out <- ch
				}
				if final := c.Flush(); final != nil {
					out <- *final
				}
				return
			case <-ticker.C:
				for _, ch := range c.Feed(rb.Drain()) {
					out <- ch
				}
			}
		}
	}()
	return out
}
