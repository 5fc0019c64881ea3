// Package commands implements the logpeek subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logpeek/logpeek/pkg/config"
	"github.com/logpeek/logpeek/pkg/engine"
	"github.com/logpeek/logpeek/pkg/filter"
	"github.com/logpeek/logpeek/pkg/source"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// fetchFlags holds the source and filter options shared by the logs and
// view commands.
type fetchFlags struct {
	Source   string
	Since    string
	Until    string
	Units    []string
	Priority string
	Follow   bool
	Path     string
	Mode     string

	Severity      string
	MinSeverity   string
	Keyword       string
	CaseSensitive bool
	Category      string

	Limit int
	Warn  bool
}

func addFetchFlags(cmd *cobra.Command, f *fetchFlags) {
	cmd.Flags().StringVarP(&f.Source, "source", "s", "", "Log source (journal|file)")
	cmd.Flags().StringVar(&f.Since, "since", "", "Start of time window (journalctl --since syntax)")
	cmd.Flags().StringVar(&f.Until, "until", "", "End of time window")
	cmd.Flags().StringSliceVarP(&f.Units, "unit", "u", nil, "Restrict to systemd unit(s) (can be repeated)")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "", "Maximum priority passed to the journal query")
	cmd.Flags().BoolVarP(&f.Follow, "follow", "f", false, "Tail new entries continuously (journal only)")
	cmd.Flags().StringVar(&f.Path, "path", "", "Log file path (file source)")
	cmd.Flags().StringVar(&f.Mode, "mode", "", "File format (text|jsonl|auto)")

	cmd.Flags().StringVar(&f.Severity, "severity", "", "Exact severity match (label or number)")
	cmd.Flags().StringVar(&f.MinSeverity, "min-severity", "", "Keep records at least this severe")
	cmd.Flags().StringVarP(&f.Keyword, "keyword", "k", "", "Substring to search for in messages")
	cmd.Flags().BoolVar(&f.CaseSensitive, "case-sensitive", false, "Case-sensitive keyword search")
	cmd.Flags().StringVar(&f.Category, "category", "", "Keep records with this category (unit or identifier)")

	cmd.Flags().IntVarP(&f.Limit, "limit", "n", -1, "Maximum records to fetch (0 = unbounded)")
	cmd.Flags().BoolVar(&f.Warn, "warn", false, "Report skipped entries and degraded fields to stderr")
}

// loadConfig reads the --config flag from the command tree and loads
// the configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// resolve merges flags with config defaults into engine arguments.
func (f *fetchFlags) resolve(cfg *config.Config) (string, source.Params, engine.FetchOptions, filter.Criteria, error) {
	name := f.Source
	if name == "" {
		name = cfg.DefaultSource
	}

	mode := f.Mode
	if mode == "" {
		mode = cfg.FileMode
	}
	parsedMode, err := source.ParseMode(mode)
	if err != nil {
		return "", source.Params{}, engine.FetchOptions{}, filter.Criteria{}, err
	}

	since := f.Since
	if since == "" {
		since = cfg.Since
	}

	params := source.Params{
		Since:        since,
		Until:        f.Until,
		Units:        f.Units,
		Priority:     f.Priority,
		Follow:       f.Follow,
		Path:         f.Path,
		Mode:         parsedMode,
		WarnOnErrors: f.Warn || cfg.WarnOnErrors,
		BinaryPath:   cfg.JournalctlPath,
	}

	opts := engine.FetchOptions{
		Limit:        f.effectiveLimit(cfg),
		WarnOnErrors: f.Warn || cfg.WarnOnErrors,
	}

	criteria := filter.Criteria{
		Severity:      f.Severity,
		MinSeverity:   f.MinSeverity,
		Keyword:       f.Keyword,
		CaseSensitive: f.CaseSensitive,
		SearchRaw:     cfg.SearchRaw,
		Category:      f.Category,
	}

	return name, params, opts, criteria, nil
}

// effectiveLimit picks the record cap. An explicit --limit wins; an
// explicit time window or follow mode streams unbounded; otherwise the
// configured default cap applies.
func (f *fetchFlags) effectiveLimit(cfg *config.Config) int {
	if f.Limit >= 0 {
		return f.Limit
	}
	if f.Since != "" || f.Until != "" || f.Follow {
		return 0
	}
	return cfg.Limit
}
