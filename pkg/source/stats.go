package source

// ReadStats tracks per-source read counters. A source owns its stats:
// they are created at open, mutated during Next, and frozen once the
// source is closed. Retrieve snapshots via Source.Stats.
type ReadStats struct {
	// TotalLines counts every line read from the underlying feed,
	// including empty and malformed ones.
	TotalLines int `json:"total_lines"`

	// EmptyLines counts blank lines that were skipped.
	EmptyLines int `json:"empty_lines"`

	// JSONErrors counts lines that failed to parse as JSON and were
	// skipped.
	JSONErrors int `json:"json_errors"`

	// EventsYielded counts events successfully returned to the caller.
	EventsYielded int `json:"events_yielded"`
}
