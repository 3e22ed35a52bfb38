package mcp

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJournal(t *testing.T, dir, date, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, date+".md"), []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write journal fixture: %v", err)
	}
}

func TestListDatesSortedAscending(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, "2026-08-05", "# 2026-08-05\n")
	writeJournal(t, dir, "2026-08-01", "# 2026-08-01\n")

	dates, err := New(dir).ListDates()
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-08-01" || dates[1] != "2026-08-05" {
		t.Errorf("dates = %v, want sorted [2026-08-01 2026-08-05]", dates)
	}
}

func TestGetDayParsesHeadingsAndSpeakers(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, "2026-08-06", "# 2026-08-06\n\n## 09:00\n\n**Alice:** hello there\nunattributed line\n")

	segs, err := New(dir).GetDay("2026-08-06")
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("segs = %d, want 2", len(segs))
	}
	if segs[0].Speaker != "Alice" || segs[0].Text != "hello there" || segs[0].Time != "09:00" {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Speaker != "" || segs[1].Text != "unattributed line" {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestSearchTranscriptionsIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, "2026-08-06", "# 2026-08-06\n\n## 09:00\n\nThe Quick Brown Fox\n")

	segs, err := New(dir).SearchTranscriptions("quick brown", "", "")
	if err != nil {
		t.Fatalf("SearchTranscriptions: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("segs = %d, want 1", len(segs))
	}
}

func TestGetSpeakersDeduplicatesAcrossDays(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, "2026-08-01", "# 2026-08-01\n\n## 09:00\n\n**Alice:** hi\n")
	writeJournal(t, dir, "2026-08-02", "# 2026-08-02\n\n## 10:00\n\n**Alice:** hi again\n**Bob:** hello\n")

	speakers, err := New(dir).GetSpeakers()
	if err != nil {
		t.Fatalf("GetSpeakers: %v", err)
	}
	if len(speakers) != 2 || speakers[0] != "Alice" || speakers[1] != "Bob" {
		t.Errorf("speakers = %v, want [Alice Bob]", speakers)
	}
}

func TestGetSummaryAggregatesAcrossDays(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, "2026-08-01", "# 2026-08-01\n\n## 09:00\n\nsegment one\nsegment two\n")
	writeJournal(t, dir, "2026-08-03", "# 2026-08-03\n\n## 09:00\n\nsegment three\n")

	summary, err := New(dir).GetSummary()
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.Days != 2 || summary.Segments != 3 {
		t.Errorf("summary = %+v, want days=2 segments=3", summary)
	}
	if summary.EarliestDate != "2026-08-01" || summary.LatestDate != "2026-08-03" {
		t.Errorf("date range = %s..%s", summary.EarliestDate, summary.LatestDate)
	}
}
