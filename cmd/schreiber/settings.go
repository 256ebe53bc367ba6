package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cjdb/schreiber/internal/config"
	"github.com/cjdb/schreiber/internal/prof"
)

// run holds what prepareRun resolved for the executing command.
var run struct {
	cfg     *config.Config
	log     *slog.Logger
	cleanup func(failed bool)
	failed  bool
	prof    *prof.Session
}

func prepareRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRootFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	run.cfg = cfg

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	run.log = newLogger(cmd.ErrOrStderr(), quiet)
	if cfg.Path != "" {
		run.log.Debug("configuration loaded", "path", cfg.Path)
	}

	color.NoColor = !colorEnabled(cfg.Output.Color, os.Stdout)

	cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	run.cleanup = cleanup

	return startProfiling(cmd)
}

func startProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = pf.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = pf.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	run.prof, err = prof.Start(opts)
	return err
}

func finishRun(*cobra.Command, []string) error {
	if run.cleanup != nil {
		run.cleanup(run.failed)
		run.cleanup = nil
	}
	err := run.prof.Stop()
	run.prof = nil
	return err
}

// loadConfig reads --config when given, otherwise searches upwards from the
// working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Load(".")
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	env, err := config.Environ(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyRootFlags copies explicitly set persistent flags over cfg.
func applyRootFlags(cmd *cobra.Command, cfg *config.Config) error {
	pf := cmd.Root().PersistentFlags()
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"color", &cfg.Output.Color},
		{"path-mode", &cfg.Output.PathMode},
		{"trace", &cfg.Trace.Output},
		{"trace-level", &cfg.Trace.Level},
		{"trace-mode", &cfg.Trace.Mode},
		{"trace-format", &cfg.Trace.Format},
	}
	for _, s := range overrides {
		if !pf.Changed(s.flag) {
			continue
		}
		v, err := pf.GetString(s.flag)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", s.flag, err)
		}
		*s.dst = v
	}
	return nil
}

func newLogger(w io.Writer, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func colorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}
