package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/logpeek/logpeek/pkg/record"
)

// JSONFormatter renders records as JSON-Lines: one object per line.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format encodes each record as a single JSON line. Raw fields are
// dropped unless verbose output was requested.
func (f *JSONFormatter) Format(ctx context.Context, s record.Stream, w io.Writer) error {
	defer s.Close()

	encoder := json.NewEncoder(w)
	for {
		rec, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if !f.opts.Verbose && rec.Raw != nil {
			trimmed := *rec
			trimmed.Raw = nil
			rec = &trimmed
		}

		if err := encoder.Encode(rec); err != nil {
			return err
		}
	}
}
