package commands

import (
	"github.com/spf13/cobra"

	"github.com/logpeek/logpeek/internal/tui"
	"github.com/logpeek/logpeek/pkg/engine"
)

// NewViewCommand creates the view command, which launches the
// interactive terminal viewer.
func NewViewCommand() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse log records interactively",
		Long: `Open a full-screen viewer over the selected source. Records stream in
lazily; filters can be changed on the fly without re-reading the source.

Keys: / search, m min-severity, c category, r raw fields, R reload, q quit.`,
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

			eng := engine.New()
			if err := tui.Run(tui.Options{
				Engine: eng,
				Source: name,
				Params: params,
				Fetch:  opts,
				Buffer: cfg.Buffer,
				Filter: criteria,
			}); err != nil {
				ExitCode = 2
				return err
			}
			return nil
		},
	}

	addFetchFlags(cmd, &flags)

	return cmd
}
