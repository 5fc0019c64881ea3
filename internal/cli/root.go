// Package cli provides the command-line interface for logpeek.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logpeek/logpeek/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logpeek",
		Short: "View and filter systemd journal and log files",
		Long: `logpeek normalizes heterogeneous log sources into one structured record
type and lets you filter and inspect them from the command line or an
interactive terminal viewer.

Sources:
  journal   systemd journal via journalctl (time range, units, priority, follow)
  file      plain-text or JSON-Lines log files

Severity follows the syslog scale: 0 (EMERG, most severe) to 7 (DEBUG).
A minimum-severity filter keeps records at least that severe.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path (default ~/.logpeek.yaml)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewLogsCommand())
	rootCmd.AddCommand(commands.NewViewCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
