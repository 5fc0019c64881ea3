package normalize

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/severity"
)

func fixedClock() (func() time.Time, time.Time) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	return func() time.Time { return at }, at
}

func journalEvent(fields map[string]any) *record.RawEvent {
	return &record.RawEvent{Fields: fields, SourceType: record.SourceJournal}
}

func TestNormalize_Journal(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 30, 0, 0, time.Local)
	us := strconv.FormatInt(ts.UnixMicro(), 10)

	n := New()
	rec := n.Normalize(journalEvent(map[string]any{
		"MESSAGE":                    "disk error on /dev/sda",
		"PRIORITY":                   "3",
		"_SOURCE_REALTIME_TIMESTAMP": us,
		"_SYSTEMD_UNIT":              "smartd.service",
	}))

	if rec.Severity != severity.Error {
		t.Errorf("Severity = %v, want Error", rec.Severity)
	}
	if rec.Label != "ERROR" {
		t.Errorf("Label = %q, want ERROR", rec.Label)
	}
	if rec.Message != "disk error on /dev/sda" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.Category != "smartd.service" {
		t.Errorf("Category = %q, want smartd.service", rec.Category)
	}
	if rec.Timestamp != ts.Format(time.RFC3339) {
		t.Errorf("Timestamp = %q, want %q", rec.Timestamp, ts.Format(time.RFC3339))
	}
	if rec.ID == "" {
		t.Error("ID is empty")
	}
	if rec.Raw != nil {
		t.Error("Raw retained without KeepRaw")
	}

	stats := n.Stats().Snapshot()
	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1", stats.Total)
	}
	if stats.MissingPriority+stats.InvalidPriority+stats.MissingTimestamp+stats.MissingMessage != 0 {
		t.Errorf("unexpected degradation counters: %+v", stats)
	}
}

func TestNormalize_MissingPriority(t *testing.T) {
	n := New()
	rec := n.Normalize(journalEvent(map[string]any{"MESSAGE": "hello"}))

	if rec.Severity != severity.Info {
		t.Errorf("Severity = %v, want Info default", rec.Severity)
	}
	if got := n.Stats().Snapshot().MissingPriority; got != 1 {
		t.Errorf("MissingPriority = %d, want 1", got)
	}
}

func TestNormalize_InvalidPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority any
	}{
		{"out of range high", "9"},
		{"out of range negative", float64(-1)},
		{"non-numeric", "loud"},
		{"wrong type", []any{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New()
			rec := n.Normalize(journalEvent(map[string]any{
				"MESSAGE":  "hello",
				"PRIORITY": tt.priority,
			}))

			if rec.Severity != severity.Info {
				t.Errorf("Severity = %v, want Info default", rec.Severity)
			}
			if rec.Label != "INFO" {
				t.Errorf("Label = %q, want INFO", rec.Label)
			}
			if got := n.Stats().Snapshot().InvalidPriority; got != 1 {
				t.Errorf("InvalidPriority = %d, want exactly 1", got)
			}
		})
	}
}

func TestNormalize_MissingMessage(t *testing.T) {
	n := New()
	rec := n.Normalize(journalEvent(map[string]any{"PRIORITY": "6"}))

	if rec.Message != "" {
		t.Errorf("Message = %q, want empty", rec.Message)
	}
	if got := n.Stats().Snapshot().MissingMessage; got != 1 {
		t.Errorf("MissingMessage = %d, want 1", got)
	}
}

func TestNormalize_MissingTimestampFallsBackToNow(t *testing.T) {
	clock, at := fixedClock()
	n := New(withClock(clock))

	rec := n.Normalize(journalEvent(map[string]any{
		"MESSAGE":                    "hello",
		"PRIORITY":                   "6",
		"_SOURCE_REALTIME_TIMESTAMP": "not-a-number",
	}))

	if rec.Timestamp != at.Format(time.RFC3339) {
		t.Errorf("Timestamp = %q, want fallback %q", rec.Timestamp, at.Format(time.RFC3339))
	}
	if got := n.Stats().Snapshot().MissingTimestamp; got != 1 {
		t.Errorf("MissingTimestamp = %d, want 1", got)
	}
}

func TestNormalize_JournalRealtimeFallbackField(t *testing.T) {
	ts := time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local)

	n := New()
	rec := n.Normalize(journalEvent(map[string]any{
		"MESSAGE":              "hello",
		"PRIORITY":             "6",
		"__REALTIME_TIMESTAMP": strconv.FormatInt(ts.UnixMicro(), 10),
	}))

	if rec.Timestamp != ts.Format(time.RFC3339) {
		t.Errorf("Timestamp = %q, want %q", rec.Timestamp, ts.Format(time.RFC3339))
	}
}

func TestNormalize_JSONL(t *testing.T) {
	n := New()
	rec := n.Normalize(&record.RawEvent{
		SourceType: record.SourceFileJSON,
		Fields: map[string]any{
			"msg":       "request failed",
			"level":     "error",
			"timestamp": "2026-01-15T10:30:00Z",
			"unit":      "api.service",
		},
	})

	if rec.Severity != severity.Error {
		t.Errorf("Severity = %v, want Error", rec.Severity)
	}
	if rec.Message != "request failed" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.Category != "api.service" {
		t.Errorf("Category = %q, want api.service", rec.Category)
	}

	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC).Local().Format(time.RFC3339)
	if rec.Timestamp != want {
		t.Errorf("Timestamp = %q, want %q", rec.Timestamp, want)
	}
}

func TestNormalize_JSONLNumericLevelAndUnixTime(t *testing.T) {
	n := New()
	rec := n.Normalize(&record.RawEvent{
		SourceType: record.SourceFileJSON,
		Fields: map[string]any{
			"message": "warn-level entry",
			"level":   float64(4),
			"time":    float64(1768472400),
		},
	})

	if rec.Severity != severity.Warning {
		t.Errorf("Severity = %v, want Warning", rec.Severity)
	}
	want := time.Unix(1768472400, 0).Local().Format(time.RFC3339)
	if rec.Timestamp != want {
		t.Errorf("Timestamp = %q, want %q", rec.Timestamp, want)
	}
}

func TestNormalize_Text(t *testing.T) {
	clock, at := fixedClock()
	n := New(withClock(clock), WithKeepRaw(true))

	rec := n.Normalize(&record.RawEvent{
		Text:       "plain old log line",
		SourceType: record.SourceFileText,
	})

	if rec.Message != "plain old log line" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.Severity != severity.Info {
		t.Errorf("Severity = %v, want Info", rec.Severity)
	}
	if rec.Timestamp != at.Format(time.RFC3339) {
		t.Errorf("Timestamp = %q", rec.Timestamp)
	}
	if rec.Category != record.CategoryUnknown {
		t.Errorf("Category = %q, want %q", rec.Category, record.CategoryUnknown)
	}
	if rec.Raw["line"] != "plain old log line" {
		t.Errorf("Raw[line] = %v", rec.Raw["line"])
	}

	// Text lines structurally carry no priority or timestamp fields;
	// the quality counters stay untouched.
	stats := n.Stats().Snapshot()
	if stats.MissingPriority != 0 || stats.MissingTimestamp != 0 {
		t.Errorf("text line bumped field counters: %+v", stats)
	}
}

func TestNormalize_KeepRaw(t *testing.T) {
	fields := map[string]any{"MESSAGE": "hello", "PRIORITY": "6", "EXTRA": "kept"}

	n := New(WithKeepRaw(true))
	rec := n.Normalize(journalEvent(fields))

	if rec.Raw["EXTRA"] != "kept" {
		t.Errorf("Raw[EXTRA] = %v, want kept", rec.Raw["EXTRA"])
	}
}

func TestNormalize_WarningsDoNotChangeRecord(t *testing.T) {
	ev := map[string]any{"PRIORITY": "99"}

	quiet := New()
	recQuiet := quiet.Normalize(journalEvent(ev))

	var buf bytes.Buffer
	noisy := New(WithWarnings(zerolog.New(&buf)))
	recNoisy := noisy.Normalize(journalEvent(ev))

	if buf.Len() == 0 {
		t.Error("expected warnings on the side channel")
	}
	if recQuiet.Severity != recNoisy.Severity ||
		recQuiet.Label != recNoisy.Label ||
		recQuiet.Message != recNoisy.Message {
		t.Error("warnings changed record content")
	}
}

func TestStats_Reset(t *testing.T) {
	n := New()
	n.Normalize(journalEvent(map[string]any{}))

	if n.Stats().Snapshot().Total != 1 {
		t.Fatal("expected counters to move")
	}

	n.Stats().Reset()
	if got := n.Stats().Snapshot(); got != (Snapshot{}) {
		t.Errorf("after Reset counters = %+v, want zeroes", got)
	}
}
