// Package record defines the data model shared across the pipeline:
// raw source events, normalized log records, and the lazy record stream.
package record

import (
	"strings"

	"github.com/logpeek/logpeek/pkg/severity"
)

// Source type tags carried by RawEvent.
const (
	SourceJournal  = "journal"
	SourceFileJSON = "file_jsonl"
	SourceFileText = "file_text"
)

// CategoryUnknown is the category assigned when no unit or identifier
// can be resolved from an event.
const CategoryUnknown = "(unknown)"

// RawEvent is an unparsed event as produced by a source, before
// normalization. Structured sources populate Fields; text sources
// populate Text. Events are immutable once produced.
type RawEvent struct {
	// Fields holds the source-native field mapping for structured
	// sources (journal JSON, JSON-Lines files). Nil for text sources.
	Fields map[string]any

	// Text is the raw line for plain-text sources.
	Text string

	// SourceType identifies the producing source (journal, file_jsonl,
	// file_text).
	SourceType string

	// Metadata carries source-specific context such as the file path
	// or line number. Informational only.
	Metadata map[string]any
}

// LogRecord is the normalized, filterable unit of output.
//
// Invariants: Label is always the canonical mapping of Severity, and
// Timestamp is an RFC 3339 string in the local timezone (falling back to
// the normalization wall-clock time when the source carried none).
type LogRecord struct {
	// ID is a generated identifier, stable for the lifetime of the
	// record. Used by the UI to track selection across refilters.
	ID string `json:"id"`

	// Timestamp is the ISO-8601 (RFC 3339) timestamp in local time.
	Timestamp string `json:"timestamp"`

	// Severity is the syslog priority (0 EMERG .. 7 DEBUG).
	Severity severity.Severity `json:"severity"`

	// Label is the canonical label for Severity.
	Label string `json:"label"`

	// Message is the log message text.
	Message string `json:"message"`

	// Category is the resolved grouping key (systemd unit, syslog
	// identifier, or "(unknown)").
	Category string `json:"category"`

	// Raw preserves the original field mapping when raw passthrough was
	// requested; nil otherwise.
	Raw map[string]any `json:"raw,omitempty"`
}

// Category resolves the grouping key for a raw field mapping.
// Resolution order: systemd unit, then syslog identifier, then
// CategoryUnknown. JSON-Lines files may carry the lowercase spellings.
func Category(fields map[string]any) string {
	for _, key := range []string{"_SYSTEMD_UNIT", "unit", "SYSLOG_IDENTIFIER", "syslog_identifier"} {
		if v, ok := fields[key]; ok {
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return CategoryUnknown
}
