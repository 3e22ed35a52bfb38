package speaker

import (
	"path/filepath"
	"testing"
)

func TestSlugifyRejectsPathSeparators(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "etc-passwd",
		"Alice Smith":       "alice-smith",
		"a/b\\c":            "a-b-c",
		"":                  "speaker",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveProfileNeverEscapesDir(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Name: "../../evil", Embedding: []float32{0.1}, UpdateCount: 1}
	if err := SaveProfile(dir, p); err != nil {
		t.Fatal(err)
	}
	entries, err := filepath.Glob(filepath.Join(dir, "*.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one profile written under dir, got %v", entries)
	}
}
