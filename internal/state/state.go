// Package state persists the set of PMIDs already included in a digest,
// keyed by delivery time, so consecutive runs never re-notify.
package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// JST is the reference time zone for delivery timestamps.
var JST = time.FixedZone("JST", 9*60*60)

// Entry records when a PMID was first included in a digest. AddedAt is kept
// as the raw stored string: entries written by older versions of the tool
// (or hand-edited) may hold values that no longer parse, and those must
// survive pruning rather than risk a duplicate notification.
type Entry struct {
	AddedAt string `json:"added_at,omitempty"`
}

// State maps PMID to its delivery record.
type State map[string]Entry

// Contains reports whether the PMID has already been digested.
func (s State) Contains(pmid string) bool {
	_, ok := s[pmid]
	return ok
}

// Mark records the PMID as delivered at the given time. An existing entry
// keeps its original timestamp.
func (s State) Mark(pmid string, now time.Time) {
	if _, ok := s[pmid]; ok {
		return
	}
	s[pmid] = Entry{AddedAt: now.In(JST).Format(time.RFC3339)}
}

// Prune drops entries whose timestamp is older than the retention window
// and returns how many were removed. Entries with a missing or unparseable
// timestamp are always kept.
func (s State) Prune(now time.Time, retentionDays int) int {
	cutoff := now.In(JST).AddDate(0, 0, -retentionDays)
	removed := 0
	for pmid, entry := range s {
		if entry.AddedAt == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, entry.AddedAt)
		if err != nil {
			continue
		}
		if !ts.In(JST).After(cutoff) {
			delete(s, pmid)
			removed++
		}
	}
	return removed
}

// Load reads the state file. A missing file is an empty state; a corrupt
// file is logged and treated as empty rather than aborting the run. The
// legacy format (a bare JSON array of PMIDs) upgrades to entries with no
// timestamp.
func Load(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("state: cannot read %s: %v (starting empty)", path, err)
		}
		return State{}
	}

	var current map[string]Entry
	if err := json.Unmarshal(data, &current); err == nil {
		s := State(current)
		if s == nil {
			s = State{}
		}
		return s
	}

	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		s := make(State, len(legacy))
		for _, pmid := range legacy {
			if pmid != "" {
				s[pmid] = Entry{}
			}
		}
		return s
	}

	log.Printf("state: %s is not valid state JSON (starting empty)", path)
	return State{}
}

// Save writes the state in the canonical object form. Save followed by Load
// reproduces an equal state.
func Save(path string, s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("state: failed to encode: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("state: failed to write %s: %w", path, err)
	}
	return nil
}
