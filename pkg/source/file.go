package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/logpeek/logpeek/pkg/record"
)

// Mode selects how a FileSource interprets its input.
type Mode string

const (
	// ModeText yields one raw event per non-empty line.
	ModeText Mode = "text"

	// ModeJSONL parses one JSON object per line; malformed lines are
	// skipped and counted.
	ModeJSONL Mode = "jsonl"

	// ModeAuto samples the file at open time and picks text or jsonl.
	ModeAuto Mode = "auto"
)

// ParseMode validates a mode string. Empty input defaults to ModeText.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "":
		return ModeText, nil
	case ModeText:
		return ModeText, nil
	case ModeJSONL:
		return ModeJSONL, nil
	case ModeAuto:
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("invalid file mode %q (must be text, jsonl, or auto)", s)
	}
}

// maxLineSize bounds a single log line read from a file or subprocess.
const maxLineSize = 1024 * 1024

// FileSource reads raw events from a local log file. UTF-8 is assumed.
// Follow mode is not supported for files; Next fails fast with
// ErrNotSupported when the follow flag is set.
type FileSource struct {
	path   string
	mode   Mode
	follow bool
	warn   zerolog.Logger

	file    *os.File
	scanner *bufio.Scanner
	lineNum int
	stats   ReadStats
	closed  bool
}

// NewFileSource creates a file source from parameters. The file is opened
// lazily on the first Next call.
func NewFileSource(params Params) (Source, error) {
	if params.Path == "" {
		return nil, fmt.Errorf("%w: file source requires a path", ErrNotFound)
	}

	mode, err := ParseMode(string(params.Mode))
	if err != nil {
		return nil, err
	}

	return &FileSource{
		path:   params.Path,
		mode:   mode,
		follow: params.Follow,
		warn:   warnLogger(params.WarnOnErrors),
	}, nil
}

// Next returns the next raw event from the file.
// Empty lines are skipped and counted; in jsonl mode, malformed lines are
// skipped and counted as well. Returns io.EOF at end of file.
func (s *FileSource) Next(ctx context.Context) (*record.RawEvent, error) {
	if s.follow {
		return nil, fmt.Errorf("%w: follow mode is unavailable for file sources", ErrNotSupported)
	}
	if s.closed {
		return nil, io.EOF
	}

	if s.scanner == nil {
		if err := s.open(); err != nil {
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
				return nil, fmt.Errorf("reading %s: %w", s.path, err)
			}
			return nil, io.EOF
		}

		s.lineNum++
		s.stats.TotalLines++

		line := strings.TrimRight(s.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			s.stats.EmptyLines++
			continue
		}

		if s.mode == ModeJSONL {
			var fields map[string]any
			if err := json.Unmarshal([]byte(line), &fields); err != nil {
				s.stats.JSONErrors++
				s.warn.Warn().
					Str("path", s.path).
					Int("line", s.lineNum).
					Msg("skipped malformed JSON line")
				continue
			}
			s.stats.EventsYielded++
			return &record.RawEvent{
				Fields:     fields,
				SourceType: record.SourceFileJSON,
				Metadata:   map[string]any{"path": s.path, "line": s.lineNum},
			}, nil
		}

		s.stats.EventsYielded++
		return &record.RawEvent{
			Text:       line,
			SourceType: record.SourceFileText,
			Metadata:   map[string]any{"path": s.path, "line": s.lineNum},
		}, nil
	}
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return fmt.Errorf("%w: %s", ErrNotFound, s.path)
		case os.IsPermission(err):
			return fmt.Errorf("%w: %s", ErrPermission, s.path)
		default:
			return fmt.Errorf("opening log file %s: %w", s.path, err)
		}
	}

	if s.mode == ModeAuto {
		mode, err := DetectMode(f, DefaultSampleSize)
		if err != nil {
			f.Close()
			return fmt.Errorf("detecting format of %s: %w", s.path, err)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return fmt.Errorf("rewinding %s: %w", s.path, err)
		}
		s.mode = mode
	}

	s.file = f
	s.scanner = bufio.NewScanner(f)
	s.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return nil
}

// Close releases the file handle. Safe to call more than once. The read
// counters are frozen once closed.
func (s *FileSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.scanner = nil

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// Stats returns a snapshot of the read counters.
func (s *FileSource) Stats() ReadStats {
	return s.stats
}
