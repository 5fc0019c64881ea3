package record

import (
	"context"
	"io"
)

// Stream is a lazy, single-pass sequence of log records. Nothing is read
// ahead of demand: each Next call pulls exactly one record through the
// pipeline. Implementations must be safe for sequential access (not
// concurrent).
type Stream interface {
	// Next returns the next record. Returns io.EOF when the sequence is
	// exhausted.
	Next(ctx context.Context) (*LogRecord, error)

	// Close releases underlying resources. Safe to call more than once,
	// and safe to call while iteration is incomplete.
	Close() error
}

// sliceStream iterates over an in-memory record slice.
type sliceStream struct {
	records []*LogRecord
	pos     int
}

// NewSliceStream returns a Stream over an in-memory slice. Used by the
// UI buffer and by tests.
func NewSliceStream(records []*LogRecord) Stream {
	return &sliceStream{records: records}
}

func (s *sliceStream) Next(ctx context.Context) (*LogRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *sliceStream) Close() error {
	s.pos = len(s.records)
	return nil
}

// Collect drains a stream into a slice, closing it afterwards. The cap
// argument bounds the number of records collected; zero means unbounded.
func Collect(ctx context.Context, s Stream, cap int) ([]*LogRecord, error) {
	defer s.Close()

	var records []*LogRecord
	for {
		rec, err := s.Next(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
		if cap > 0 && len(records) >= cap {
			return records, nil
		}
	}
}
