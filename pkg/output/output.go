// Package output renders record streams for the command line.
package output

import (
	"context"
	"fmt"
	"io"

	"github.com/logpeek/logpeek/pkg/record"
)

// Formatter renders a record stream in a specific format. Formatters
// consume lazily: one record is pulled, rendered, and released at a
// time.
type Formatter interface {
	// Format renders the stream to the given writer, draining it.
	Format(ctx context.Context, s record.Stream, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose includes the preserved raw fields with each record.
	Verbose bool
}

// New returns the formatter for the given name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", name)
	}
}
