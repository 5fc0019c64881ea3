// logpeek - Log Viewer and Filter
//
// logpeek reads logs from the systemd journal or plain files, normalizes
// them into one record shape, and filters them from the command line or
// an interactive terminal viewer.
package main

import (
	"os"

	"github.com/logpeek/logpeek/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
