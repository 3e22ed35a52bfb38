package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteCreatesDayFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ts := time.Date(2026, 8, 6, 9, 30, 0, 0, time.UTC)
	if err := w.Write(Segment{Text: "hello", Speaker: "alice", Timestamp: ts}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "2026-08-06.md"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "# Thursday, August 6, 2026\n\n") {
		t.Fatalf("missing day header: %q", content)
	}
	if !strings.Contains(content, "## 09:30") {
		t.Fatalf("missing minute heading: %q", content)
	}
	if !strings.Contains(content, "**alice:** hello") {
		t.Fatalf("missing speaker-prefixed line: %q", content)
	}
}

func TestWriteWithoutSpeakerOmitsPrefix(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ts := time.Date(2026, 8, 6, 9, 30, 0, 0, time.UTC)
	if err := w.Write(Segment{Text: "hello", Speaker: "alice", Timestamp: ts}); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "2026-08-06.md"))
	if strings.Contains(string(data), "alice") {
		t.Fatalf("did not expect speaker prefix when disabled: %q", data)
	}
}

func TestWriteSameMinuteDoesNotRepeatHeading(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ts := time.Date(2026, 8, 6, 9, 30, 0, 0, time.UTC)
	w.Write(Segment{Text: "one", Timestamp: ts})
	w.Write(Segment{Text: "two", Timestamp: ts.Add(10 * time.Second)})

	data, _ := os.ReadFile(filepath.Join(dir, "2026-08-06.md"))
	if strings.Count(string(data), "## 09:30") != 1 {
		t.Fatalf("expected exactly one heading, got: %q", data)
	}
}
