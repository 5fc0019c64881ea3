// Package severity maps syslog/journald priority numbers to labels and back.
//
// Priorities follow RFC 5424: 0 (EMERG) is the most severe, 7 (DEBUG) the
// least. Every comparison in this package uses that inverted numeric scale.
package severity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSeverity is returned when a severity argument cannot be resolved
// to a priority in the 0-7 range.
var ErrInvalidSeverity = errors.New("invalid severity")

// Severity is a syslog priority level (0-7).
type Severity int

// Syslog priority levels, most severe first.
const (
	Emerg Severity = iota
	Alert
	Crit
	Error
	Warning
	Notice
	Info
	Debug
)

var labels = [...]string{
	Emerg:   "EMERG",
	Alert:   "ALERT",
	Crit:    "CRIT",
	Error:   "ERROR",
	Warning: "WARNING",
	Notice:  "NOTICE",
	Info:    "INFO",
	Debug:   "DEBUG",
}

// aliases maps lowercased label spellings to priorities. Includes the
// standard abbreviations alongside the full names.
var aliases = map[string]Severity{
	"emerg":     Emerg,
	"emergency": Emerg,
	"panic":     Emerg,
	"alert":     Alert,
	"crit":      Crit,
	"critical":  Crit,
	"error":     Error,
	"err":       Error,
	"warning":   Warning,
	"warn":      Warning,
	"notice":    Notice,
	"info":      Info,
	"debug":     Debug,
}

// Valid reports whether s is inside the 0-7 priority range.
func (s Severity) Valid() bool {
	return s >= Emerg && s <= Debug
}

// Label returns the canonical upper-case label. Out-of-range values render
// as their numeric form; callers that need strictness use FromNumber first.
func (s Severity) Label() string {
	if !s.Valid() {
		return strconv.Itoa(int(s))
	}
	return labels[s]
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	return s.Label()
}

// AtLeast reports whether s is at least as severe as threshold. Lower
// numbers are more severe, so this is a numeric <= comparison.
func (s Severity) AtLeast(threshold Severity) bool {
	return s <= threshold
}

// FromNumber converts a numeric priority, rejecting values outside 0-7.
func FromNumber(n int) (Severity, error) {
	s := Severity(n)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: priority %d not in 0-7", ErrInvalidSeverity, n)
	}
	return s, nil
}

// Parse resolves a severity argument that may be a label, a standard
// abbreviation, or a numeric string. Matching is case-insensitive.
func Parse(v string) (Severity, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("%w: empty severity", ErrInvalidSeverity)
	}

	if n, err := strconv.Atoi(v); err == nil {
		return FromNumber(n)
	}

	if s, ok := aliases[strings.ToLower(v)]; ok {
		return s, nil
	}

	return 0, fmt.Errorf("%w: unknown label %q", ErrInvalidSeverity, v)
}
