package ring

import "testing"

func TestPushDrainRoundTrip(t *testing.T) {
	b := New(8)
	b.Push([]int16{1, 2, 3})
	got := b.Drain()
	want := []int16{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after drain, got len %d", b.Len())
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	b := New(4)
	b.Push([]int16{1, 2, 3, 4, 5, 6})
	if b.Overflow() != 2 {
		t.Fatalf("overflow = %d, want 2", b.Overflow())
	}
	got := b.Drain()
	want := []int16{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPushNeverBlocksOnFullBuffer(t *testing.T) {
	b := New(2)
	for i := 0; i < 1000; i++ {
		b.Push([]int16{int16(i)})
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}
