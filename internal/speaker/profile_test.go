package speaker

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadProfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Name: "alice", Embedding: []float32{0.1, 0.2, 0.3}, UpdateCount: 5}

	if err := SaveProfile(dir, p); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadProfile(filepath.Join(dir, "alice.bin"))
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Name != p.Name {
		t.Fatalf("name = %q, want %q", loaded.Name, p.Name)
	}
	if loaded.UpdateCount != p.UpdateCount {
		t.Fatalf("update count = %d, want %d", loaded.UpdateCount, p.UpdateCount)
	}
	if len(loaded.Embedding) != len(p.Embedding) {
		t.Fatalf("embedding len = %d, want %d", len(loaded.Embedding), len(p.Embedding))
	}
	for i := range p.Embedding {
		if loaded.Embedding[i] != p.Embedding[i] {
			t.Fatalf("embedding[%d] = %f, want %f", i, loaded.Embedding[i], p.Embedding[i])
		}
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := []float32{1, 0, 0}
	if got := cosineSimilarity(a, a); got < 0.999 {
		t.Fatalf("cosine similarity of identical vectors = %f, want ~1", got)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	if got := cosineSimilarity(a, b); got > 0.001 {
		t.Fatalf("cosine similarity of orthogonal vectors = %f, want ~0", got)
	}
}
