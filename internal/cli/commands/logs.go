package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logpeek/logpeek/pkg/engine"
	"github.com/logpeek/logpeek/pkg/output"
	"github.com/logpeek/logpeek/pkg/source"
)

// NewLogsCommand creates the logs command, which fetches, filters, and
// prints records in one pass.
func NewLogsCommand() *cobra.Command {
	var (
		flags      fetchFlags
		format     string
		showRaw    bool
		printStats bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Fetch and filter log records",
		Long: `Fetch log records from the journal or a file, normalize them, apply
any filters, and print them in order.

Examples:
  logpeek logs --min-severity warning
  logpeek logs --source file --path /var/log/app.jsonl --keyword timeout
  logpeek logs --since yesterday --unit nginx.service --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				ExitCode = 2
				return err
			}

			name, params, opts, criteria, err := flags.resolve(cfg)
			if err != nil {
				ExitCode = 2
				return err
			}
			opts.KeepRaw = showRaw

			formatter, err := output.New(format, output.FormatOptions{Verbose: showRaw})
			if err != nil {
				ExitCode = 2
				return err
			}

			eng := engine.New()
			stream, err := eng.FetchAndFilterLogs(name, params, opts, criteria)
			if err != nil {
				ExitCode = 2
				return describeOpenError(err, params)
			}
			defer stream.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := formatter.Format(ctx, stream, cmd.OutOrStdout()); err != nil {
				if errors.Is(err, ctx.Err()) {
					return nil
				}
				ExitCode = 2
				return err
			}

			if printStats {
				return writeStats(cmd.ErrOrStderr(), eng.Diagnostics())
			}
			return nil
		},
	}

	addFetchFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVar(&showRaw, "raw", false, "Include the original source fields with each record")
	cmd.Flags().BoolVar(&printStats, "stats", false, "Print processing counters to stderr after the run")

	return cmd
}

// describeOpenError turns the well-known source errors into actionable
// messages.
func describeOpenError(err error, params source.Params) error {
	switch {
	case errors.Is(err, source.ErrNotFound):
		if params.Path != "" {
			return fmt.Errorf("%w\n\nCheck that %s exists and the path is spelled correctly", err, params.Path)
		}
		return fmt.Errorf("%w\n\nRun 'logpeek diagnose' to check what sources are available", err)
	case errors.Is(err, source.ErrPermission):
		return fmt.Errorf("%w\n\nTry running with elevated privileges, or add yourself to the systemd-journal group", err)
	default:
		return err
	}
}

func writeStats(w io.Writer, d engine.Diagnostics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
