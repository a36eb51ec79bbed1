package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "sent_pmids.json")
}

func TestLoadMissingFile(t *testing.T) {
	s := Load(statePath(t))
	if len(s) != 0 {
		t.Fatalf("Expected empty state, got %v", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := statePath(t)
	now := time.Date(2025, 8, 30, 9, 0, 0, 0, JST)

	s := State{}
	s.Mark("111", now)
	s.Mark("222", now)
	s["333"] = Entry{} // legacy entry without a timestamp

	if err := Save(path, s); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := Load(path)
	if !reflect.DeepEqual(loaded, s) {
		t.Errorf("Round trip mismatch:\ngot  %v\nwant %v", loaded, s)
	}
}

func TestLoadLegacyArray(t *testing.T) {
	path := statePath(t)
	if err := os.WriteFile(path, []byte(`["111", "222"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if len(s) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(s))
	}
	for _, pmid := range []string{"111", "222"} {
		entry, ok := s[pmid]
		if !ok {
			t.Errorf("Expected entry for %s", pmid)
		}
		if entry.AddedAt != "" {
			t.Errorf("Legacy entry should have no timestamp, got %q", entry.AddedAt)
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := statePath(t)
	if err := os.WriteFile(path, []byte(`{{{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if len(s) != 0 {
		t.Fatalf("Expected empty state for corrupt file, got %v", s)
	}
}

func TestPrune(t *testing.T) {
	now := time.Date(2025, 8, 30, 9, 0, 0, 0, JST)
	s := State{
		"old":    {AddedAt: now.AddDate(0, 0, -91).Format(time.RFC3339)},
		"edge":   {AddedAt: now.AddDate(0, 0, -90).Format(time.RFC3339)},
		"recent": {AddedAt: now.AddDate(0, 0, -1).Format(time.RFC3339)},
		"legacy": {},
		"odd":    {AddedAt: "not a timestamp"},
	}

	removed := s.Prune(now, 90)

	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	for _, pmid := range []string{"recent", "legacy", "odd"} {
		if !s.Contains(pmid) {
			t.Errorf("Expected %s to survive pruning", pmid)
		}
	}
	for _, pmid := range []string{"old", "edge"} {
		if s.Contains(pmid) {
			t.Errorf("Expected %s to be pruned", pmid)
		}
	}
}

func TestMarkKeepsOriginalTimestamp(t *testing.T) {
	s := State{}
	first := time.Date(2025, 8, 1, 9, 0, 0, 0, JST)
	s.Mark("111", first)
	s.Mark("111", first.AddDate(0, 0, 10))

	want := first.Format(time.RFC3339)
	if s["111"].AddedAt != want {
		t.Errorf("Expected original timestamp %q, got %q", want, s["111"].AddedAt)
	}
}

func TestMarkStoresJST(t *testing.T) {
	s := State{}
	s.Mark("111", time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC))

	ts, err := time.Parse(time.RFC3339, s["111"].AddedAt)
	if err != nil {
		t.Fatalf("Stored timestamp does not parse: %v", err)
	}
	_, offset := ts.Zone()
	if offset != 9*60*60 {
		t.Errorf("Expected JST offset, got %d", offset)
	}
}
