// Package filter applies composable predicates to record streams.
// Filtering is lazy and order-preserving: records are pulled one at a
// time from the input and never reordered or buffered.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/severity"
)

// Criteria describes what to keep. All present criteria combine with
// AND; unset criteria match everything.
type Criteria struct {
	// Severity keeps only records with exactly this severity, given as
	// a label or numeric string. Label matching is case-insensitive.
	Severity string

	// MinSeverity keeps records at least this severe. Severity numbers
	// are inverted (0 = EMERG is most severe), so a record passes when
	// its number is less than or equal to the threshold's number.
	MinSeverity string

	// Keyword keeps records whose message contains this substring.
	Keyword string

	// CaseSensitive makes the keyword match exact-case. When false both
	// sides are lowercased before comparing.
	CaseSensitive bool

	// SearchRaw extends the keyword match to the preserved raw field
	// values.
	SearchRaw bool

	// Category keeps records with exactly this resolved category.
	Category string
}

// Empty reports whether no criteria are set.
func (c Criteria) Empty() bool {
	return c.Severity == "" && c.MinSeverity == "" && c.Keyword == "" && c.Category == ""
}

// predicate is a compiled Criteria: severity text resolved to numbers,
// keyword pre-lowered.
type predicate struct {
	exact    *severity.Severity
	min      *severity.Severity
	keyword  string
	caseSens bool
	raw      bool
	category string
}

func (c Criteria) compile() (*predicate, error) {
	p := &predicate{
		caseSens: c.CaseSensitive,
		raw:      c.SearchRaw,
		category: c.Category,
	}

	if c.Severity != "" {
		sev, err := severity.Parse(c.Severity)
		if err != nil {
			return nil, fmt.Errorf("severity filter: %w", err)
		}
		p.exact = &sev
	}

	if c.MinSeverity != "" {
		sev, err := severity.Parse(c.MinSeverity)
		if err != nil {
			return nil, fmt.Errorf("min-severity filter: %w", err)
		}
		p.min = &sev
	}

	if c.Keyword != "" {
		p.keyword = c.Keyword
		if !c.CaseSensitive {
			p.keyword = strings.ToLower(c.Keyword)
		}
	}

	return p, nil
}

// matches evaluates the predicate against one record, short-circuiting
// on the first failing criterion.
func (p *predicate) matches(rec *record.LogRecord) bool {
	if p.exact != nil && rec.Severity != *p.exact {
		return false
	}

	// Minimum severity uses the inverted syslog scale: "at least
	// warning" keeps numbers <= 4, not >= 4.
	if p.min != nil && !rec.Severity.AtLeast(*p.min) {
		return false
	}

	if p.keyword != "" && !p.matchKeyword(rec) {
		return false
	}

	if p.category != "" && rec.Category != p.category {
		return false
	}

	return true
}

func (p *predicate) matchKeyword(rec *record.LogRecord) bool {
	if p.containsKeyword(rec.Message) {
		return true
	}
	if p.raw {
		for key, value := range rec.Raw {
			if p.containsKeyword(key) || p.containsKeyword(fmt.Sprint(value)) {
				return true
			}
		}
	}
	return false
}

func (p *predicate) containsKeyword(s string) bool {
	if !p.caseSens {
		s = strings.ToLower(s)
	}
	return strings.Contains(s, p.keyword)
}

// filteredStream pulls from an inner stream and yields only matching
// records.
type filteredStream struct {
	inner record.Stream
	pred  *predicate
}

func (f *filteredStream) Next(ctx context.Context) (*record.LogRecord, error) {
	for {
		rec, err := f.inner.Next(ctx)
		if err != nil {
			return nil, err
		}
		if f.pred.matches(rec) {
			return rec, nil
		}
	}
}

func (f *filteredStream) Close() error {
	return f.inner.Close()
}

// Apply wraps a stream with the given criteria. The input is not
// materialized and its order is preserved. Invalid severity text fails
// here with severity.ErrInvalidSeverity before any record is pulled.
func Apply(s record.Stream, c Criteria) (record.Stream, error) {
	if c.Empty() {
		return s, nil
	}

	pred, err := c.compile()
	if err != nil {
		return nil, err
	}
	return &filteredStream{inner: s, pred: pred}, nil
}

// Matches reports whether a single record satisfies the criteria. Used
// by the UI for in-memory refiltering.
func Matches(rec *record.LogRecord, c Criteria) (bool, error) {
	pred, err := c.compile()
	if err != nil {
		return false, err
	}
	return pred.matches(rec), nil
}
