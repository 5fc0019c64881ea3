package commands

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logpeek/logpeek/pkg/config"
	"github.com/logpeek/logpeek/pkg/source"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
	Path    string
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose common environment issues",
		Long: `Diagnose common environment issues.

This command checks the environment logpeek runs in:
- Config file syntax and values
- journalctl availability and journal read permission
- Log file existence, readability, and format detection

Example:
  logpeek diagnose
  logpeek diagnose --path /var/log/app.jsonl
  logpeek diagnose -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			runDiagnose(configPath, opts)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Log file to check for the file source")

	return cmd
}

func runDiagnose(configPath string, opts *DiagnoseOptions) {
	results := []DiagnosticResult{}

	cfg, result := checkConfig(configPath)
	results = append(results, result)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	results = append(results, checkJournal(cfg)...)

	if opts.Path != "" {
		results = append(results, checkLogFile(opts.Path)...)
	}

	printDiagnostics(results, opts)
}

func checkConfig(path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config File",
	}

	cfg, err := config.Load(path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config loaded"
	result.Details = []string{
		fmt.Sprintf("Default source: %s", cfg.DefaultSource),
		fmt.Sprintf("Record cap: %d", cfg.Limit),
	}
	return cfg, result
}

func checkJournal(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	binary := cfg.JournalctlPath
	if binary == "" {
		binary = source.DefaultJournalBinary
	}

	result := DiagnosticResult{
		Check: "journalctl Binary",
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("journalctl not found: %v", err)
		result.Suggests = []string{
			"The journal source needs systemd; use --source file on non-systemd hosts",
			"Set journalctl_path in the config if the binary lives outside PATH",
		}
		results = append(results, result)
		return results
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s", path)
	results = append(results, result)

	// Probe read access with a one-entry query.
	access := DiagnosticResult{
		Check: "Journal Access",
	}

	var stderr bytes.Buffer
	cmd := exec.Command(path, "--output=json", "--no-pager", "-n", "1") // #nosec G204 -- binary resolved from config
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.ToLower(stderr.String())
		if strings.Contains(msg, "permission denied") || strings.Contains(msg, "access denied") {
			access.Status = "error"
			access.Message = "Journal exists but is not readable by this user"
			access.Suggests = []string{
				"Add yourself to the systemd-journal group: sudo usermod -aG systemd-journal $USER",
				"Or run logpeek with elevated privileges",
			}
		} else {
			access.Status = "warning"
			access.Message = fmt.Sprintf("journalctl probe failed: %v", err)
			if s := strings.TrimSpace(stderr.String()); s != "" {
				access.Details = []string{s}
			}
		}
	} else {
		access.Status = "ok"
		access.Message = "Journal is readable"
	}
	results = append(results, access)

	return results
}

func checkLogFile(path string) []DiagnosticResult {
	results := []DiagnosticResult{}

	result := DiagnosticResult{
		Check: fmt.Sprintf("Log File: %s", path),
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = "File does not exist"
		result.Suggests = []string{
			"Check if the log file path is correct",
		}
		results = append(results, result)
		return results
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		results = append(results, result)
		return results
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		results = append(results, result)
		return results
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "File is empty (0 bytes)"
		results = append(results, result)
		return results
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
	results = append(results, result)

	// Sniff the format so mode auto-detection behavior is visible up front.
	detect := DiagnosticResult{
		Check: "Format Detection",
	}

	det, err := source.DetectFile(path, source.DefaultSampleSize)
	if err != nil {
		detect.Status = "warning"
		detect.Message = fmt.Sprintf("Cannot sample file: %v", err)
	} else {
		detect.Status = "ok"
		detect.Message = fmt.Sprintf("Detected mode: %s", det.Mode)
		detect.Details = []string{
			fmt.Sprintf("Sampled lines: %d", det.SampledLines),
			fmt.Sprintf("JSON lines: %d", det.JSONLines),
			fmt.Sprintf("Confidence: %.0f%%", det.Confidence*100),
		}
		if det.Mode == source.ModeText && det.JSONLines > 0 {
			detect.Suggests = []string{
				"The file mixes JSON and plain lines; pass --mode jsonl or --mode text explicitly",
			}
		}
	}
	results = append(results, detect)

	return results
}

func printDiagnostics(results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Println("=== logpeek Environment Diagnostics ===")
	fmt.Println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Printf("[%s] %s\n", icon, r.Check)
		fmt.Printf("    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Printf("      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Printf("      Hint: %s\n", s)
		}

		fmt.Println()
	}

	fmt.Println("---")
	fmt.Printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Println("\nFix the errors above before fetching logs.")
		ExitCode = 2
	} else if warnCount > 0 {
		fmt.Println("\nEnvironment is usable but has warnings.")
	} else {
		fmt.Println("\nEnvironment looks good!")
	}
}
