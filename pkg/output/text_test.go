package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/severity"
)

func sampleRecords() []*record.LogRecord {
	return []*record.LogRecord{
		{
			ID:        "a",
			Timestamp: "2026-01-15T10:30:00+01:00",
			Severity:  severity.Error,
			Label:     "ERROR",
			Category:  "nginx.service",
			Message:   "upstream timed out",
			Raw:       map[string]any{"_SYSTEMD_UNIT": "nginx.service", "PRIORITY": "3"},
		},
		{
			ID:        "b",
			Timestamp: "2026-01-15T10:30:01+01:00",
			Severity:  severity.Info,
			Label:     "INFO",
			Category:  "(unknown)",
			Message:   "request served",
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer

	f := NewTextFormatter(FormatOptions{})
	if err := f.Format(context.Background(), record.NewSliceStream(sampleRecords()), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "ERROR") || !strings.Contains(lines[0], "upstream timed out") {
		t.Errorf("line = %q, missing label or message", lines[0])
	}
	if strings.Contains(out, "_SYSTEMD_UNIT") {
		t.Error("raw fields rendered without verbose")
	}
}

func TestTextFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer

	f := NewTextFormatter(FormatOptions{Verbose: true})
	if err := f.Format(context.Background(), record.NewSliceStream(sampleRecords()), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(buf.String(), "_SYSTEMD_UNIT=nginx.service") {
		t.Errorf("verbose output missing raw fields:\n%s", buf.String())
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"text", "json"} {
		f, err := New(name, FormatOptions{})
		if err != nil {
			t.Errorf("New(%q) error = %v", name, err)
			continue
		}
		if f.Name() != name {
			t.Errorf("Name() = %q, want %q", f.Name(), name)
		}
	}

	if _, err := New("yaml", FormatOptions{}); err == nil {
		t.Error("New(yaml) expected error")
	}
}
