package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/severity"
)

// DefaultJournalBinary is the journal query executable.
const DefaultJournalBinary = "journalctl"

// defaultSinceWindow is the time window queried when no Since is given.
const defaultSinceWindow = 24 * time.Hour

// JournalSource reads events from the systemd journal by spawning
// journalctl with JSON output. One event is parsed per stdout line;
// malformed lines are skipped and counted. In follow mode the subprocess
// tails new entries and Next blocks until one arrives; Close terminates
// the subprocess.
type JournalSource struct {
	since    string
	until    string
	units    []string
	priority string
	follow   bool
	bin      string
	warn     zerolog.Logger

	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   bytes.Buffer
	scanner  *bufio.Scanner
	started  bool
	finished bool
	closed   bool
	stats    ReadStats
}

// NewJournalSource creates a journal source from parameters. The
// subprocess is spawned lazily on the first Next call, so construction
// never blocks. An unresolvable priority fails here with
// severity.ErrInvalidSeverity.
func NewJournalSource(params Params) (Source, error) {
	src := &JournalSource{
		since:  params.Since,
		until:  params.Until,
		units:  params.Units,
		follow: params.Follow,
		bin:    params.BinaryPath,
		warn:   warnLogger(params.WarnOnErrors),
	}

	if src.since == "" {
		src.since = time.Now().Add(-defaultSinceWindow).Format("2006-01-02 15:04:05")
	}
	if src.bin == "" {
		src.bin = DefaultJournalBinary
	}

	if params.Priority != "" {
		sev, err := severity.Parse(params.Priority)
		if err != nil {
			return nil, err
		}
		src.priority = strconv.Itoa(int(sev))
	}

	return src, nil
}

// buildArgs assembles the journalctl argument list. Time bounds, unit
// filters, and the priority cap are query-time parameters, present in
// bounded and follow invocations alike.
func (s *JournalSource) buildArgs() []string {
	args := []string{"--output=json", "--no-pager", "--since", s.since}

	if s.until != "" {
		args = append(args, "--until", s.until)
	}
	for _, unit := range s.units {
		args = append(args, "--unit", unit)
	}
	if s.priority != "" {
		args = append(args, "--priority", s.priority)
	}
	if s.follow {
		args = append(args, "--follow")
	}

	return args
}

// Next returns the next journal event. Setup failures surface here on
// the first call: a missing journalctl binary maps to ErrNotFound, and a
// permission-denied exit maps to ErrPermission. Returns io.EOF once the
// query is exhausted.
func (s *JournalSource) Next(ctx context.Context) (*record.RawEvent, error) {
	if s.closed {
		return nil, io.EOF
	}

	if !s.started {
		if err := s.start(); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading journalctl output: %w", err)
			}
			if err := s.wait(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		s.stats.TotalLines++

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			s.stats.EmptyLines++
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(line), &fields); err != nil {
			s.stats.JSONErrors++
			s.warn.Warn().
				Int("skipped", s.stats.JSONErrors).
				Msg("skipped malformed journal line")
			continue
		}

		s.stats.EventsYielded++
		return &record.RawEvent{
			Fields:     fields,
			SourceType: record.SourceJournal,
			Metadata:   map[string]any{"binary": s.bin},
		}, nil
	}
}

func (s *JournalSource) start() error {
	cmd := exec.Command(s.bin, s.buildArgs()...) // #nosec G204 -- fixed binary with structured args
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("connecting to journalctl: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s is not available (is systemd installed?)", ErrNotFound, s.bin)
		}
		return fmt.Errorf("starting %s: %w", s.bin, err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.scanner = bufio.NewScanner(stdout)
	s.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s.started = true

	return nil
}

// wait reaps the subprocess after its output is drained and classifies
// a non-zero exit. journalctl exits 1 with no stderr output when the
// query matched nothing; that is not an error.
func (s *JournalSource) wait() error {
	if s.finished {
		return nil
	}
	s.finished = true

	err := s.cmd.Wait()
	if err == nil {
		return nil
	}

	stderr := strings.TrimSpace(s.stderr.String())
	lower := strings.ToLower(stderr)

	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "access denied") {
		return fmt.Errorf("%w: %s", ErrPermission, stderr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr == "" {
		return nil
	}

	return fmt.Errorf("%s failed: %w: %s", s.bin, err, stderr)
}

// Close terminates the journalctl subprocess if it is still running and
// reaps it. Safe to call more than once; the read counters are frozen
// once closed.
func (s *JournalSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.started && !s.finished {
		s.finished = true
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
	}
	return nil
}

// Stats returns a snapshot of the read counters.
func (s *JournalSource) Stats() ReadStats {
	return s.stats
}
