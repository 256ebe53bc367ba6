package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cjdb/schreiber/internal/version"
)

// errCheckFailed is returned when the run produced error diagnostics. The
// diagnostics are already printed, so main only sets the exit status.
var errCheckFailed = errors.New("check failed")

var rootCmd = &cobra.Command{
	Use:   "schreiber",
	Short: "Documentation comment checker",
	Long: `schreiber scans the /// documentation comments attached to the declarations
listed in a declaration index, validates their directives and reports
undocumented declarations.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  prepareRun,
	PersistentPostRunE: finishRun,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(lexiconCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to schreiber.toml (default: search upwards from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity, dumped when the run fails")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main executes the root command. Any error exits with status 1.
func main() {
	err := rootCmd.Execute()
	// cobra skips post-run hooks when RunE fails
	run.failed = err != nil
	if stopErr := finishRun(nil, nil); err == nil {
		err = stopErr
	}
	if err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "schreiber: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
