package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cjdb/schreiber/internal/config"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/diagfmt"
	"github.com/cjdb/schreiber/internal/docparse"
	"github.com/cjdb/schreiber/internal/driver"
	"github.com/cjdb/schreiber/internal/frontend"
	"github.com/cjdb/schreiber/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [index]",
	Short: "Validate documentation comments of the declarations in an index",
	Long: `Check reads a declaration index (YAML or JSON), attaches the /// comment
above each declaration and reports malformed directives and undocumented
declarations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.String("index", "", "declaration index (overrides check.index)")
	f.String("format", "pretty", "output format (pretty|short|json|sarif)")
	f.Int("max-diagnostics", 100, "maximum number of diagnostics to keep (0 = unlimited)")
	f.Bool("warnings-as-errors", false, "treat warnings as errors")
	f.Bool("no-warnings", false, "drop warnings from the report")
	f.Bool("with-notes", true, "print notes attached to diagnostics")
	f.Bool("fixes", false, "print available fixes (pretty and json)")
	f.Bool("preview", false, "print a before/after preview for fixes")
	f.Int("tab-width", 8, "columns per tab when measuring comment indentation")
	f.Bool("no-undocumented", false, "do not report undocumented declarations")
	f.Bool("timings", false, "append phase timings to the report")
	f.String("ui", "auto", "progress view (auto|on|off)")
	f.Int("jobs", 0, "parallel file reads (0 = GOMAXPROCS)")
}

// checkSettings is the merged view of config and command flags.
type checkSettings struct {
	index   string
	check   config.CheckConfig
	output  config.OutputConfig
	fixes   bool
	preview bool
	timings bool
	ui      progressMode
	quiet   bool
}

func readCheckSettings(cmd *cobra.Command, args []string, cfg *config.Config) (*checkSettings, error) {
	s := &checkSettings{check: cfg.Check, output: cfg.Output}
	f := cmd.Flags()

	if err := overrideCheckConfig(cmd, &s.check); err != nil {
		return nil, err
	}

	s.index = s.check.Index
	if f.Changed("index") {
		s.index, _ = f.GetString("index")
	}
	if len(args) == 1 {
		s.index = args[0]
	}
	if s.index == "" {
		return nil, fmt.Errorf("no declaration index given (pass it as an argument, use --index or set check.index in %s)", config.FileName)
	}

	var err error
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, err
	}

	c := config.Config{Check: s.check, Output: s.output, Trace: cfg.Trace}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// readReportFlags reads the flags only `check` defines.
func readReportFlags(cmd *cobra.Command, s *checkSettings) error {
	f := cmd.Flags()
	var err error
	if s.fixes, err = f.GetBool("fixes"); err != nil {
		return err
	}
	if s.preview, err = f.GetBool("preview"); err != nil {
		return err
	}
	if s.timings, err = f.GetBool("timings"); err != nil {
		return err
	}
	uiValue, err := f.GetString("ui")
	if err != nil {
		return err
	}
	s.ui, err = parseProgressMode(uiValue)
	return err
}

// overrideCheckConfig copies explicitly set flags over the [check] table.
// Commands that do not define a flag leave the value alone.
func overrideCheckConfig(cmd *cobra.Command, cc *config.CheckConfig) error {
	f := cmd.Flags()
	changed := func(name string) bool { return f.Lookup(name) != nil && f.Changed(name) }

	var err error
	// у records свой --format
	if cmd.Name() == "check" && changed("format") {
		if cc.Format, err = f.GetString("format"); err != nil {
			return err
		}
	}
	if changed("max-diagnostics") {
		if cc.MaxDiagnostics, err = f.GetInt("max-diagnostics"); err != nil {
			return err
		}
	}
	if changed("warnings-as-errors") {
		if cc.WarningsAsErrors, err = f.GetBool("warnings-as-errors"); err != nil {
			return err
		}
	}
	if changed("no-warnings") {
		if cc.NoWarnings, err = f.GetBool("no-warnings"); err != nil {
			return err
		}
	}
	if changed("with-notes") {
		if cc.WithNotes, err = f.GetBool("with-notes"); err != nil {
			return err
		}
	}
	if changed("tab-width") {
		if cc.TabWidth, err = f.GetInt("tab-width"); err != nil {
			return err
		}
	}
	if changed("no-undocumented") {
		skip, err := f.GetBool("no-undocumented")
		if err != nil {
			return err
		}
		cc.Undocumented = !skip
	}
	if changed("jobs") {
		if cc.Jobs, err = f.GetInt("jobs"); err != nil {
			return err
		}
	}
	return nil
}

func driverOptions(cc config.CheckConfig, timings bool) driver.Options {
	return driver.Options{
		Frontend: frontend.Options{
			TabWidth:       cc.TabWidth,
			Jobs:           cc.Jobs,
			MaxDiagnostics: cc.MaxDiagnostics,
		},
		Parse:          docparse.Options{SkipUndocumented: !cc.Undocumented},
		MaxDiagnostics: cc.MaxDiagnostics,
		Timings:        timings,
		Logger:         run.log,
		Observer:       logPhases(run.log),
	}
}

func logPhases(log *slog.Logger) driver.PhaseObserver {
	if log == nil {
		return nil
	}
	return func(e driver.PhaseEvent) {
		if e.Status == driver.PhaseEnd {
			log.Debug("phase finished", "phase", e.Name, "elapsed", e.Elapsed)
		}
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := readCheckSettings(cmd, args, run.cfg)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, s); err != nil {
		return err
	}

	idx, err := frontend.ReadIndex(s.index)
	if err != nil {
		return err
	}

	opts := driverOptions(s.check, s.timings)
	var res *driver.Result
	if s.ui.showProgress(s.check.Format, s.quiet, stdoutIsTerminal()) {
		res, err = runCheckWithUI(cmd.Context(), "checking "+filepath.Base(s.index), idx, opts)
	} else {
		res, err = driver.CheckIndex(cmd.Context(), idx, opts)
	}
	if err != nil {
		return err
	}

	applySeverityPolicy(res.Bag, s.check)
	if err := renderDiagnostics(cmd.OutOrStdout(), res, s, os.Args[1:]); err != nil {
		return err
	}
	if !s.quiet && s.check.Format == "pretty" {
		printSummary(cmd.ErrOrStderr(), res)
	}
	if res.Bag.HasErrors() {
		return errCheckFailed
	}
	return nil
}

// applySeverityPolicy drops or promotes warnings. Timing reports are info
// and stay untouched.
func applySeverityPolicy(bag *diag.Bag, cc config.CheckConfig) {
	if cc.NoWarnings {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	}
	if cc.WarningsAsErrors {
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
}

func renderDiagnostics(w io.Writer, res *driver.Result, s *checkSettings, args []string) error {
	pathMode, err := diagfmt.ParsePathMode(s.output.PathMode)
	if err != nil {
		return err
	}

	switch s.check.Format {
	case "short":
		diagfmt.Short(w, res.Bag, res.FileSet, diagfmt.ShortOpts{
			PathMode:  pathMode,
			ShowNotes: s.check.WithNotes,
		})
	case "json":
		return diagfmt.JSON(w, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     s.check.WithNotes,
			IncludeFixes:     s.fixes,
			IncludePreviews:  s.preview,
		})
	case "sarif":
		return diagfmt.Sarif(w, res.Bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "schreiber",
			ToolVersion:    version.Version,
			InvocationArgs: args,
		})
	default:
		diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       colorEnabled(s.output.Color, os.Stdout),
			Context:     0,
			PathMode:    pathMode,
			ShowNotes:   s.check.WithNotes,
			ShowFixes:   s.fixes,
			ShowPreview: s.preview,
		})
	}
	return nil
}

func printSummary(w io.Writer, res *driver.Result) {
	errs, warns := 0, 0
	for _, d := range res.Bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	fmt.Fprintf(w, "%d declarations, %d documented: %d error(s), %d warning(s)",
		res.Stats.Declarations, res.Stats.Documented, errs, warns)
	if dropped := res.Bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, " (%d more not shown)", dropped)
	}
	fmt.Fprintln(w)
}

// checkForTool runs a check without the progress view or the undocumented
// report for commands that consume the result themselves.
func checkForTool(ctx context.Context, cmd *cobra.Command, args []string) (*driver.Result, *checkSettings, error) {
	s, err := readCheckSettings(cmd, args, run.cfg)
	if err != nil {
		return nil, nil, err
	}
	s.check = toolCheckConfig(s.check)
	res, err := driver.Check(ctx, s.index, driverOptions(s.check, false))
	if err != nil {
		return nil, nil, err
	}
	return res, s, nil
}

// toolCheckConfig is the check configuration behind fix and records: no
// undocumented scan and no cap on the bag, whose fixes and records must
// all survive.
func toolCheckConfig(cc config.CheckConfig) config.CheckConfig {
	cc.Undocumented = false
	cc.MaxDiagnostics = 0
	return cc
}
