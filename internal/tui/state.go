// Package tui implements the interactive terminal viewer. All log
// semantics live in pkg/engine and pkg/filter; this package only
// buffers, refilters, and renders.
package tui

import (
	"sort"
	"time"

	"github.com/logpeek/logpeek/pkg/filter"
	"github.com/logpeek/logpeek/pkg/record"
)

// State holds the in-memory record buffer and the active view filters.
// Pure data and refiltering; no I/O.
type State struct {
	records []*record.LogRecord
	buffer  int

	// Filters applied in-memory on top of whatever the fetch already
	// filtered.
	Filters filter.Criteria

	// Selected indexes into the visible slice; -1 means nothing.
	Selected int

	// ShowRaw toggles the raw details pane for the selected record.
	ShowRaw bool
}

// NewState creates a State with the given ring-buffer capacity.
func NewState(buffer int) *State {
	if buffer <= 0 {
		buffer = 10000
	}
	return &State{buffer: buffer, Selected: -1}
}

// Append adds a record, evicting the oldest once the buffer is full.
func (s *State) Append(rec *record.LogRecord) {
	s.records = append(s.records, rec)
	if len(s.records) > s.buffer {
		s.records = s.records[len(s.records)-s.buffer:]
	}
}

// Len returns the number of buffered records.
func (s *State) Len() int {
	return len(s.records)
}

// Clear drops the buffer and the selection.
func (s *State) Clear() {
	s.records = nil
	s.Selected = -1
}

// Visible applies the current filters and returns matching records,
// newest first. Criteria that fail to compile (half-typed severity
// text) leave the view unfiltered rather than empty.
func (s *State) Visible() []*record.LogRecord {
	visible := make([]*record.LogRecord, 0, len(s.records))
	for _, rec := range s.records {
		ok, err := filter.Matches(rec, s.Filters)
		if err != nil {
			ok = true
		}
		if ok {
			visible = append(visible, rec)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return timestampKey(visible[i]) > timestampKey(visible[j])
	})
	return visible
}

// Categories returns the distinct categories in the buffer, sorted.
func (s *State) Categories() []string {
	seen := make(map[string]bool)
	for _, rec := range s.records {
		seen[rec.Category] = true
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// CycleCategory advances the category filter through the buffered
// categories, ending back at no filter.
func (s *State) CycleCategory() {
	categories := s.Categories()
	if len(categories) == 0 {
		s.Filters.Category = ""
		return
	}

	if s.Filters.Category == "" {
		s.Filters.Category = categories[0]
		return
	}
	for i, c := range categories {
		if c == s.Filters.Category {
			if i+1 < len(categories) {
				s.Filters.Category = categories[i+1]
			} else {
				s.Filters.Category = ""
			}
			return
		}
	}
	s.Filters.Category = ""
}

// timestampKey converts a record timestamp to a sortable value. Records
// with unparseable timestamps sort last.
func timestampKey(rec *record.LogRecord) int64 {
	t, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return 0
	}
	return t.UnixNano()
}
