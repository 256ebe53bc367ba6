package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cjdb/schreiber/internal/diagfmt"
)

var recordsCmd = &cobra.Command{
	Use:   "records [flags] [index]",
	Short: "Emit the structured documentation of every documented declaration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRecords,
}

func init() {
	f := recordsCmd.Flags()
	f.String("format", "json", "records format (json|yaml|msgpack)")
	f.StringP("output", "o", "", "write records to a file instead of stdout")
	f.String("index", "", "declaration index (overrides check.index)")
	f.Int("tab-width", 8, "columns per tab when measuring comment indentation")
	f.Int("jobs", 0, "parallel file reads (0 = GOMAXPROCS)")
}

func runRecords(cmd *cobra.Command, args []string) error {
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := diagfmt.ParseRecordFormat(formatName)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	res, s, err := checkForTool(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		run.log.Warn("documentation has errors; rejected directives are missing from the records",
			"diagnostics", res.Bag.Len())
	}

	pathMode, err := diagfmt.ParsePathMode(s.output.PathMode)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		// #nosec G304 -- path is provided by the user
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := diagfmt.Records(w, res.Records, res.FileSet, pathMode, format); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	run.log.Debug("records written", "count", len(res.Records), "format", formatName)
	return nil
}
