// Package ring implements the single-producer single-consumer sample
// buffer that sits between the capture callback and the chunker. Push
// never blocks the capture callback: once the buffer is full the oldest
// samples are dropped and an overflow counter is incremented.
package ring

import "sync"

// Buffer is a fixed-capacity ring of int16 PCM samples.
type Buffer struct {
	mu       sync.Mutex
	data     []int16
	head     int // next write index
	size     int // number of valid samples currently stored
	overflow uint64
}

// New allocates a Buffer holding at most capacity samples.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{data: make([]int16, capacity)}
}

// Push appends samples, dropping the oldest data if the buffer would
// overflow. It never blocks and is safe to call from a real-time audio
// callback.
func (b *Buffer) Push(samples []int16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.data)
	for _, s := range samples {
		b.data[b.head] = s
		b.head = (b.head + 1) % n
		if b.size < n {
			b.size++
		} else {
			b.overflow++
		}
	}
}

// Drain removes and returns every sample currently buffered, oldest first.
func (b *Buffer) Drain() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int16, b.size)
	n := len(b.data)
	start := (b.head - b.size + n) % n
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(start+i)%n]
	}
	b.size = 0
	return out
}

// Len reports the number of samples currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Overflow reports the cumulative number of samples dropped due to the
// buffer being full when Push was called.
func (b *Buffer) Overflow() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}
