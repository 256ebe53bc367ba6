package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [index]",
	Short: "Apply available fixes to the documented sources",
	Long: `Fix runs the check, collects the fixes attached to its diagnostics (such as
replacing legacy Doxygen commands) and applies them to the source files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	f := fixCmd.Flags()
	f.Bool("all", false, "apply all safe fixes")
	f.Bool("once", false, "apply the first available fix (default)")
	f.String("id", "", "apply the fix with this identifier (legacy-<keyword>-<file>-<offset>, see --fixes)")
	f.Bool("dry-run", false, "report what would change without writing files")
	f.String("index", "", "declaration index (overrides check.index)")
	f.Int("tab-width", 8, "columns per tab when measuring comment indentation")
	f.Int("jobs", 0, "parallel file reads (0 = GOMAXPROCS)")
}

func readApplyOptions(cmd *cobra.Command) (fix.ApplyOptions, error) {
	f := cmd.Flags()
	applyAll, err := f.GetBool("all")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	applyOnce, err := f.GetBool("once")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	targetID, err := f.GetString("id")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	dryRun, err := f.GetBool("dry-run")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	return applyOptionsFor(applyAll, applyOnce, targetID, dryRun)
}

func applyOptionsFor(applyAll, applyOnce bool, targetID string, dryRun bool) (fix.ApplyOptions, error) {
	if targetID != "" && (applyAll || applyOnce) {
		return fix.ApplyOptions{}, fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fix.ApplyOptions{}, fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	return fix.ApplyOptions{Mode: mode, TargetID: targetID, DryRun: dryRun}, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	opts, err := readApplyOptions(cmd)
	if err != nil {
		return err
	}

	res, _, err := checkForTool(cmd.Context(), cmd, args)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	var diagnostics []diag.Diagnostic
	for _, d := range res.Bag.Items() {
		if len(d.Fixes) > 0 {
			diagnostics = append(diagnostics, d)
		}
	}
	applied, applyErr := fix.Apply(res.FileSet, diagnostics, opts)
	if applied != nil {
		for _, ch := range applied.FileChanges {
			if !opts.DryRun {
				run.log.Info("fixes written", "file", ch.Path, "edits", ch.EditCount)
			}
		}
	}
	return handleApplyResult(cmd.OutOrStdout(), applied, applyErr, opts.DryRun)
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] at %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability.String())
		}
	}

	if len(res.FileChanges) > 0 {
		header := "Updated files:"
		if dryRun {
			header = "Would update files:"
		}
		fmt.Fprintln(out, header)
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
