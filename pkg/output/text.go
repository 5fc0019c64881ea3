package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/logpeek/logpeek/pkg/record"
)

// TextFormatter renders records as aligned human-readable lines.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders one line per record: timestamp, label, category,
// message. Verbose mode appends the preserved raw fields, sorted by key
// for stable output.
func (f *TextFormatter) Format(ctx context.Context, s record.Stream, w io.Writer) error {
	defer s.Close()

	for {
		rec, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s  %-7s  %-20s  %s\n",
			rec.Timestamp, rec.Label, rec.Category, rec.Message); err != nil {
			return err
		}

		if f.opts.Verbose && len(rec.Raw) > 0 {
			keys := make([]string, 0, len(rec.Raw))
			for key := range rec.Raw {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				if _, err := fmt.Fprintf(w, "    %s=%v\n", key, rec.Raw[key]); err != nil {
					return err
				}
			}
		}
	}
}
