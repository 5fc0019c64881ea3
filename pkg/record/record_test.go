package record

import (
	"context"
	"io"
	"testing"

	"github.com/logpeek/logpeek/pkg/severity"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{
			name:   "systemd unit wins",
			fields: map[string]any{"_SYSTEMD_UNIT": "nginx.service", "SYSLOG_IDENTIFIER": "nginx"},
			want:   "nginx.service",
		},
		{
			name:   "syslog identifier fallback",
			fields: map[string]any{"SYSLOG_IDENTIFIER": "kernel"},
			want:   "kernel",
		},
		{
			name:   "lowercase unit from jsonl",
			fields: map[string]any{"unit": "app.service"},
			want:   "app.service",
		},
		{
			name:   "blank unit skipped",
			fields: map[string]any{"_SYSTEMD_UNIT": "  ", "SYSLOG_IDENTIFIER": "sshd"},
			want:   "sshd",
		},
		{
			name:   "non-string unit skipped",
			fields: map[string]any{"_SYSTEMD_UNIT": 42},
			want:   CategoryUnknown,
		},
		{
			name:   "nothing resolvable",
			fields: map[string]any{"MESSAGE": "hello"},
			want:   CategoryUnknown,
		},
		{
			name:   "nil fields",
			fields: nil,
			want:   CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Category(tt.fields); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSliceStream(t *testing.T) {
	records := []*LogRecord{
		{Message: "one", Severity: severity.Info, Label: "INFO"},
		{Message: "two", Severity: severity.Error, Label: "ERROR"},
	}

	s := NewSliceStream(records)
	defer s.Close()

	ctx := context.Background()
	for i := range records {
		rec, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if rec.Message != records[i].Message {
			t.Errorf("Next() message = %q, want %q", rec.Message, records[i].Message)
		}
	}

	if _, err := s.Next(ctx); err != io.EOF {
		t.Errorf("Next() after exhaustion = %v, want io.EOF", err)
	}
}

func TestSliceStream_ContextCancellation(t *testing.T) {
	s := NewSliceStream([]*LogRecord{{Message: "one"}})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Next(ctx); err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestCollect(t *testing.T) {
	records := []*LogRecord{{Message: "a"}, {Message: "b"}, {Message: "c"}}

	got, err := Collect(context.Background(), NewSliceStream(records), 0)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Collect() returned %d records, want 3", len(got))
	}

	capped, err := Collect(context.Background(), NewSliceStream(records), 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("Collect() with cap returned %d records, want 2", len(capped))
	}
}
