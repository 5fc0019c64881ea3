package commands

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set via ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				cmd.Println(Version)
				return
			}
			cmd.Printf("logpeek %s\n", Version)
			cmd.Printf("  commit:  %s\n", Commit)
			cmd.Printf("  built:   %s\n", Date)
			cmd.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print the bare version string")

	return cmd
}
