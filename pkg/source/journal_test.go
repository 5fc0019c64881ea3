package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/logpeek/logpeek/pkg/record"
)

// stubJournalctl writes an executable shell script that stands in for
// journalctl, so journal reads can be exercised without systemd.
func stubJournalctl(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "journalctl")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJournalSource_BuildArgs(t *testing.T) {
	src, err := NewJournalSource(Params{
		Since:    "2026-01-01 00:00:00",
		Until:    "2026-01-02 00:00:00",
		Units:    []string{"nginx.service", "sshd.service"},
		Priority: "warning",
		Follow:   true,
	})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}
	defer src.Close()

	want := []string{
		"--output=json", "--no-pager",
		"--since", "2026-01-01 00:00:00",
		"--until", "2026-01-02 00:00:00",
		"--unit", "nginx.service",
		"--unit", "sshd.service",
		"--priority", "4",
		"--follow",
	}
	got := src.(*JournalSource).buildArgs()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildArgs() = %v, want %v", got, want)
	}
}

func TestJournalSource_DefaultSince(t *testing.T) {
	src, err := NewJournalSource(Params{})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}
	defer src.Close()

	if src.(*JournalSource).since == "" {
		t.Error("since is empty, want a default 24h window")
	}
}

func TestJournalSource_InvalidPriority(t *testing.T) {
	_, err := NewJournalSource(Params{Priority: "shouting"})
	if err == nil {
		t.Fatal("NewJournalSource() expected error for bad priority")
	}
}

func TestJournalSource_ReadsEvents(t *testing.T) {
	bin := stubJournalctl(t, `cat <<'EOF'
{"MESSAGE":"boot complete","PRIORITY":"6","_SYSTEMD_UNIT":"init.scope"}

this line is not json
{"MESSAGE":"disk error","PRIORITY":"3"}
EOF
`)

	src, err := NewJournalSource(Params{BinaryPath: bin})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	var events []*record.RawEvent
	for {
		ev, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Fields["MESSAGE"] != "boot complete" {
		t.Errorf("MESSAGE = %v, want %q", events[0].Fields["MESSAGE"], "boot complete")
	}
	if events[0].SourceType != record.SourceJournal {
		t.Errorf("SourceType = %q, want %q", events[0].SourceType, record.SourceJournal)
	}

	stats := src.Stats()
	if stats.TotalLines != 4 {
		t.Errorf("TotalLines = %d, want 4", stats.TotalLines)
	}
	if stats.EmptyLines != 1 {
		t.Errorf("EmptyLines = %d, want 1", stats.EmptyLines)
	}
	if stats.JSONErrors != 1 {
		t.Errorf("JSONErrors = %d, want 1", stats.JSONErrors)
	}
	if stats.EventsYielded != 2 {
		t.Errorf("EventsYielded = %d, want 2", stats.EventsYielded)
	}
}

func TestJournalSource_MissingBinary(t *testing.T) {
	src, err := NewJournalSource(Params{BinaryPath: "/nonexistent/journalctl"})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}
	defer src.Close()

	_, err = src.Next(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Next() error = %v, want ErrNotFound", err)
	}
}

func TestJournalSource_PermissionDenied(t *testing.T) {
	bin := stubJournalctl(t, `echo "Permission denied accessing the journal" >&2
exit 4
`)

	src, err := NewJournalSource(Params{BinaryPath: bin})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}
	defer src.Close()

	_, err = src.Next(context.Background())
	if !errors.Is(err, ErrPermission) {
		t.Errorf("Next() error = %v, want ErrPermission", err)
	}
}

func TestJournalSource_NoEntriesExitCode(t *testing.T) {
	// journalctl exits 1 with silent stderr when nothing matched.
	bin := stubJournalctl(t, `exit 1
`)

	src, err := NewJournalSource(Params{BinaryPath: bin})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}
	defer src.Close()

	if _, err := src.Next(context.Background()); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestJournalSource_CloseTerminatesProcess(t *testing.T) {
	bin := stubJournalctl(t, `echo '{"MESSAGE":"tailing"}'
exec sleep 60
`)

	src, err := NewJournalSource(Params{BinaryPath: bin, Follow: true})
	if err != nil {
		t.Fatalf("NewJournalSource() error = %v", err)
	}

	ev, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.Fields["MESSAGE"] != "tailing" {
		t.Errorf("MESSAGE = %v, want %q", ev.Fields["MESSAGE"], "tailing")
	}

	// Close must kill the sleeping subprocess rather than hang.
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := src.Next(context.Background()); err != io.EOF {
		t.Errorf("Next() after Close = %v, want io.EOF", err)
	}
}
