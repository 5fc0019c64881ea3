// Package source provides log sources that yield raw events for
// normalization: the systemd journal (via journalctl) and local files in
// plain-text or JSON-Lines format.
package source

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/logpeek/logpeek/pkg/record"
)

// Sentinel errors for source-level failures. Per-entry failures (a single
// malformed line, a missing field) are never surfaced as errors; they are
// counted in ReadStats and processing continues.
var (
	// ErrNotFound indicates a missing binary, file path, or unregistered
	// source name.
	ErrNotFound = errors.New("source not found")

	// ErrPermission indicates access to the source was denied.
	ErrPermission = errors.New("source permission denied")

	// ErrNotSupported indicates a capability the source cannot provide,
	// such as follow mode on a plain file.
	ErrNotSupported = errors.New("not supported")
)

// Source reads raw events from some input. Iteration is a synchronous
// pull: each Next call fetches at most one event, blocking on underlying
// I/O as needed. Implementations must be safe for sequential access.
type Source interface {
	// Next returns the next raw event. Returns io.EOF when the source is
	// exhausted. Setup failures (missing binary, unreadable path) surface
	// on the first call; malformed entries are skipped and counted, never
	// returned as errors.
	Next(ctx context.Context) (*record.RawEvent, error)

	// Close releases the underlying subprocess or file handle. Idempotent.
	Close() error

	// Stats returns a snapshot of the read counters.
	Stats() ReadStats
}

// Constructor builds a Source from parameters. Used by the registry.
type Constructor func(Params) (Source, error)

// Params carries construction parameters for all source kinds.
// Constructors read the fields they understand and ignore the rest.
type Params struct {
	// Journal parameters.

	// Since is the start of the time window (journalctl --since syntax).
	// Empty means the default 24 hour window.
	Since string

	// Until is the end of the time window. Optional.
	Until string

	// Units restricts the query to the given systemd units.
	Units []string

	// Priority is a maximum priority passed to the query, as a label or
	// numeric string. Optional.
	Priority string

	// Follow enables continuous tailing of new entries.
	Follow bool

	// File parameters.

	// Path is the log file path.
	Path string

	// Mode selects the file format (text, jsonl, auto).
	Mode Mode

	// Shared.

	// WarnOnErrors emits a diagnostic line for each skipped entry.
	WarnOnErrors bool

	// BinaryPath overrides the journalctl executable. Used by config and
	// tests.
	BinaryPath string
}

// warnLogger returns the per-skip diagnostic logger: a console writer on
// stderr when enabled, a no-op otherwise. Warnings are a side channel
// only and never change what a source yields.
func warnLogger(enabled bool) zerolog.Logger {
	if !enabled {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
