package normalize

import "sync"

// Snapshot is a read-only copy of the normalization counters.
type Snapshot struct {
	// Total counts every event normalized.
	Total int `json:"total"`

	// MissingPriority counts events with no priority field.
	MissingPriority int `json:"missing_priority"`

	// InvalidPriority counts events whose priority was non-numeric or
	// outside 0-7.
	InvalidPriority int `json:"invalid_priority"`

	// MissingTimestamp counts events with no parseable timestamp.
	MissingTimestamp int `json:"missing_timestamp"`

	// MissingMessage counts events with no message field.
	MissingMessage int `json:"missing_message"`
}

// Stats holds process-wide normalization quality counters. Counters are
// append-only during normalization and reset only by an explicit Reset.
// The mutex keeps concurrent fetches safe.
type Stats struct {
	mu sync.Mutex
	s  Snapshot
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

// Snapshot returns a copy of the current counters.
func (st *Stats) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Reset zeroes all counters.
func (st *Stats) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Snapshot{}
}

func (st *Stats) add(f func(*Snapshot)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	f(&st.s)
}
