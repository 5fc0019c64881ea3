// Package normalize converts raw source events into structured log
// records. Normalization is total: every event produces a record, with
// absent or invalid fields defaulted and counted rather than rejected.
package normalize

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/severity"
)

// Normalizer turns raw events into log records, tracking data quality
// counters as it goes. A Normalizer owns its Stats; share one Normalizer
// to share counters.
type Normalizer struct {
	stats   *Stats
	keepRaw bool
	warn    zerolog.Logger
	now     func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithKeepRaw preserves the complete original field mapping on each
// record, for the raw details view.
func WithKeepRaw(keep bool) Option {
	return func(n *Normalizer) { n.keepRaw = keep }
}

// WithWarnings emits one diagnostic line per degraded field to the given
// logger. Warnings never change record content.
func WithWarnings(log zerolog.Logger) Option {
	return func(n *Normalizer) { n.warn = log }
}

// WithStats shares an existing counter set instead of allocating one.
func WithStats(stats *Stats) Option {
	return func(n *Normalizer) { n.stats = stats }
}

// withClock overrides the wall clock. Tests only.
func withClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		stats: NewStats(),
		warn:  zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Stats returns the counters owned by this normalizer.
func (n *Normalizer) Stats() *Stats {
	return n.stats
}

// Normalize converts a raw event into a log record. It never fails:
// missing or invalid fields are defaulted and counted, and the returned
// record always satisfies the label and timestamp invariants.
func (n *Normalizer) Normalize(ev *record.RawEvent) *record.LogRecord {
	n.stats.add(func(s *Snapshot) { s.Total++ })

	if ev.SourceType == record.SourceFileText || ev.Fields == nil {
		return n.normalizeText(ev)
	}
	return n.normalizeFields(ev)
}

// normalizeText handles plain-text lines. The format structurally
// carries no priority or timestamp, so the quality counters are left
// alone.
func (n *Normalizer) normalizeText(ev *record.RawEvent) *record.LogRecord {
	rec := &record.LogRecord{
		ID:        uuid.NewString(),
		Timestamp: n.now().Local().Format(time.RFC3339),
		Severity:  severity.Info,
		Label:     severity.Info.Label(),
		Message:   ev.Text,
		Category:  record.CategoryUnknown,
	}
	if n.keepRaw {
		rec.Raw = map[string]any{"line": ev.Text}
	}
	return rec
}

// normalizeFields handles structured events (journal JSON and JSON-Lines
// files). Each field is resolved independently so one bad field never
// spoils the rest of the record.
func (n *Normalizer) normalizeFields(ev *record.RawEvent) *record.LogRecord {
	fields := ev.Fields

	rec := &record.LogRecord{
		ID:       uuid.NewString(),
		Category: record.Category(fields),
	}

	rec.Severity = n.resolvePriority(fields, ev.SourceType)
	rec.Label = rec.Severity.Label()
	rec.Timestamp = n.resolveTimestamp(fields, ev.SourceType)
	rec.Message = n.resolveMessage(fields, ev.SourceType)

	if n.keepRaw {
		rec.Raw = fields
	}
	return rec
}

// Field name preferences per source type.
var (
	priorityKeys = map[string][]string{
		record.SourceJournal:  {"PRIORITY"},
		record.SourceFileJSON: {"level", "severity", "priority"},
	}
	timestampKeys = map[string][]string{
		record.SourceJournal:  {"_SOURCE_REALTIME_TIMESTAMP", "__REALTIME_TIMESTAMP"},
		record.SourceFileJSON: {"timestamp", "time", "@timestamp"},
	}
	messageKeys = map[string][]string{
		record.SourceJournal:  {"MESSAGE"},
		record.SourceFileJSON: {"message", "msg", "log"},
	}
)

func lookup(fields map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := fields[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (n *Normalizer) resolvePriority(fields map[string]any, sourceType string) severity.Severity {
	v, ok := lookup(fields, keysFor(priorityKeys, sourceType))
	if !ok {
		n.stats.add(func(s *Snapshot) { s.MissingPriority++ })
		n.warn.Warn().Str("source", sourceType).Msg("event missing priority field, defaulting to INFO")
		return severity.Info
	}

	sev, err := parsePriority(v)
	if err != nil {
		n.stats.add(func(s *Snapshot) { s.InvalidPriority++ })
		n.warn.Warn().Str("source", sourceType).Interface("priority", v).Msg("invalid priority, defaulting to INFO")
		return severity.Info
	}
	return sev
}

// parsePriority accepts the numeric forms JSON decoding can produce
// (string, float64, int) plus severity labels in JSON-Lines files.
func parsePriority(v any) (severity.Severity, error) {
	switch p := v.(type) {
	case float64:
		if p != float64(int(p)) {
			return 0, fmt.Errorf("non-integer priority %v", p)
		}
		return severity.FromNumber(int(p))
	case int:
		return severity.FromNumber(p)
	case string:
		return severity.Parse(p)
	default:
		return 0, fmt.Errorf("unsupported priority type %T", v)
	}
}

func (n *Normalizer) resolveTimestamp(fields map[string]any, sourceType string) string {
	v, ok := lookup(fields, keysFor(timestampKeys, sourceType))
	if ok {
		if ts, err := parseTimestamp(v, sourceType); err == nil {
			return ts
		}
	}

	n.stats.add(func(s *Snapshot) { s.MissingTimestamp++ })
	n.warn.Warn().Str("source", sourceType).Msg("event missing valid timestamp, using current time")
	return n.now().Local().Format(time.RFC3339)
}

// parseTimestamp converts a source timestamp to a local RFC 3339 string.
// Journal fields are microseconds since epoch; JSON-Lines files carry
// RFC 3339 strings or unix seconds.
func parseTimestamp(v any, sourceType string) (string, error) {
	if sourceType == record.SourceJournal {
		us, err := toInt64(v)
		if err != nil {
			return "", err
		}
		return time.UnixMicro(us).Local().Format(time.RFC3339), nil
	}

	switch t := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.Local().Format(time.RFC3339), nil
		}
		if secs, err := strconv.ParseFloat(t, 64); err == nil {
			return time.Unix(int64(secs), 0).Local().Format(time.RFC3339), nil
		}
		return "", fmt.Errorf("unparseable timestamp %q", t)
	case float64:
		return time.Unix(int64(t), 0).Local().Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseInt(t, 10, 64)
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func (n *Normalizer) resolveMessage(fields map[string]any, sourceType string) string {
	v, ok := lookup(fields, keysFor(messageKeys, sourceType))
	if !ok || v == "" {
		n.stats.add(func(s *Snapshot) { s.MissingMessage++ })
		n.warn.Warn().Str("source", sourceType).Msg("event missing message field")
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// keysFor returns the preferred field names for a source type, falling
// back to the JSON-Lines names for unrecognized types so normalization
// stays total.
func keysFor(m map[string][]string, sourceType string) []string {
	if keys, ok := m[sourceType]; ok {
		return keys
	}
	return m[record.SourceFileJSON]
}
