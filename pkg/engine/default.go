package engine

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/logpeek/logpeek/pkg/filter"
	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/source"
)

// defaultEngine backs the package-level facade functions, for callers
// that do not need an Engine of their own.
var defaultEngine = New()

// Default returns the shared process-wide engine.
func Default() *Engine {
	return defaultEngine
}

// FetchLogs fetches from the shared engine. See Engine.FetchLogs.
func FetchLogs(name string, params source.Params, opts FetchOptions) (record.Stream, error) {
	return defaultEngine.FetchLogs(name, params, opts)
}

// FilterLogs filters through the shared engine. See Engine.FilterLogs.
func FilterLogs(s record.Stream, criteria filter.Criteria) (record.Stream, error) {
	return defaultEngine.FilterLogs(s, criteria)
}

// FetchAndFilterLogs composes fetch and filter on the shared engine.
func FetchAndFilterLogs(name string, params source.Params, opts FetchOptions, criteria filter.Criteria) (record.Stream, error) {
	return defaultEngine.FetchAndFilterLogs(name, params, opts, criteria)
}

// RegisterSource registers a source on the shared engine.
func RegisterSource(name string, ctor source.Constructor) {
	defaultEngine.RegisterSource(name, ctor)
}

// GetDiagnostics snapshots the shared engine's counters.
func GetDiagnostics() Diagnostics {
	return defaultEngine.Diagnostics()
}

// ResetDiagnostics zeroes the shared engine's normalization counters.
func ResetDiagnostics() {
	defaultEngine.ResetDiagnostics()
}

func warnLogger(enabled bool) zerolog.Logger {
	if !enabled {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
