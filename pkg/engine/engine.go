// Package engine wires sources, normalization, and filtering into the
// public facade used by the CLI and the terminal UI.
package engine

import (
	"context"
	"io"
	"sync"

	"github.com/logpeek/logpeek/pkg/filter"
	"github.com/logpeek/logpeek/pkg/normalize"
	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/source"
)

// FetchOptions controls a single fetch.
type FetchOptions struct {
	// Limit caps the number of records yielded. Zero means unbounded
	// streaming, used whenever an explicit time range bounds the query.
	Limit int

	// WarnOnErrors emits a diagnostic line per degraded field or skipped
	// entry.
	WarnOnErrors bool

	// KeepRaw preserves the original field mapping on each record.
	KeepRaw bool
}

// Diagnostics is a read-only snapshot of processing counters: the
// process-wide normalization stats plus the read stats of the most
// recently used source.
type Diagnostics struct {
	Normalization normalize.Snapshot `json:"normalization"`
	Source        *source.ReadStats  `json:"source,omitempty"`
}

// Engine resolves sources by name, normalizes their events, and exposes
// lazy record streams. An Engine owns its normalization counters.
type Engine struct {
	registry *source.Registry
	stats    *normalize.Stats

	mu        sync.Mutex
	lastStats *source.ReadStats
}

// New creates an Engine with the built-in journal and file sources
// registered.
func New() *Engine {
	e := &Engine{
		registry: source.NewRegistry(),
		stats:    normalize.NewStats(),
	}
	e.registry.Register("journal", source.NewJournalSource)
	e.registry.Register("file", source.NewFileSource)
	return e
}

// RegisterSource adds a constructor under the given name, silently
// overwriting any previous registration.
func (e *Engine) RegisterSource(name string, ctor source.Constructor) {
	e.registry.Register(name, ctor)
}

// Sources lists the registered source names.
func (e *Engine) Sources() []string {
	return e.registry.Names()
}

// FetchLogs opens the named source and returns a lazy stream of
// normalized records. Unknown names fail with source.ErrNotFound. The
// stream closes its source exactly once on every exit path: exhaustion,
// limit, error, or an early Close by the consumer.
func (e *Engine) FetchLogs(name string, params source.Params, opts FetchOptions) (record.Stream, error) {
	src, err := e.registry.Open(name, params)
	if err != nil {
		return nil, err
	}

	norm := normalize.New(
		normalize.WithStats(e.stats),
		normalize.WithKeepRaw(opts.KeepRaw),
		normalize.WithWarnings(warnLogger(opts.WarnOnErrors)),
	)

	return &fetchStream{
		src:   src,
		norm:  norm,
		limit: opts.Limit,
		onClose: func(stats source.ReadStats) {
			e.mu.Lock()
			e.lastStats = &stats
			e.mu.Unlock()
		},
	}, nil
}

// FilterLogs applies criteria to a stream. Lazy and order-preserving.
func (e *Engine) FilterLogs(s record.Stream, criteria filter.Criteria) (record.Stream, error) {
	return filter.Apply(s, criteria)
}

// FetchAndFilterLogs composes FetchLogs and FilterLogs in one call.
func (e *Engine) FetchAndFilterLogs(name string, params source.Params, opts FetchOptions, criteria filter.Criteria) (record.Stream, error) {
	s, err := e.FetchLogs(name, params, opts)
	if err != nil {
		return nil, err
	}

	filtered, err := filter.Apply(s, criteria)
	if err != nil {
		s.Close()
		return nil, err
	}
	return filtered, nil
}

// Diagnostics returns a snapshot of the normalization counters and the
// most recently closed source's read stats.
func (e *Engine) Diagnostics() Diagnostics {
	e.mu.Lock()
	last := e.lastStats
	e.mu.Unlock()

	d := Diagnostics{Normalization: e.stats.Snapshot()}
	if last != nil {
		copied := *last
		d.Source = &copied
	}
	return d
}

// ResetDiagnostics zeroes the process-wide normalization counters. The
// per-source read stats belong to their sources and are left alone.
func (e *Engine) ResetDiagnostics() {
	e.stats.Reset()
}

// fetchStream normalizes events pulled from a source, applying the
// optional record cap and guaranteeing a single Close of the source.
type fetchStream struct {
	src     source.Source
	norm    *normalize.Normalizer
	limit   int
	count   int
	closed  bool
	onClose func(source.ReadStats)
}

func (f *fetchStream) Next(ctx context.Context) (*record.LogRecord, error) {
	if f.closed {
		return nil, io.EOF
	}
	if f.limit > 0 && f.count >= f.limit {
		f.Close()
		return nil, io.EOF
	}

	ev, err := f.src.Next(ctx)
	if err != nil {
		if cerr := f.Close(); cerr != nil && err == io.EOF {
			return nil, cerr
		}
		return nil, err
	}

	f.count++
	return f.norm.Normalize(ev), nil
}

func (f *fetchStream) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	err := f.src.Close()
	if f.onClose != nil {
		f.onClose(f.src.Stats())
	}
	return err
}
