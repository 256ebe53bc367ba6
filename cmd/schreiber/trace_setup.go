package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cjdb/schreiber/internal/config"
	"github.com/cjdb/schreiber/internal/trace"
)

// setupTracing attaches a tracer to the command's context. The returned
// cleanup dumps the ring buffer when failed is set and the mode is ring.
func setupTracing(cmd *cobra.Command, tc config.TraceConfig) (func(failed bool), error) {
	pf := cmd.Root().PersistentFlags()
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	interval, err := pf.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return nil, err
	}
	// --trace без уровня означает phase
	if level == trace.LevelOff && tc.Output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	mode, err := trace.ParseMode(tc.Mode)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(tc.Format)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:    level,
		Mode:     mode,
		Format:   format,
		Path:     tc.Output,
		RingSize: ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	stopHeartbeat := trace.StartHeartbeat(cmd.Context(), tracer, interval)

	errOut := cmd.ErrOrStderr()
	return func(failed bool) {
		stopHeartbeat()
		if d, ok := tracer.(trace.Dumper); ok && failed && mode == trace.ModeRing {
			if err := dumpRing(d, tc.Output, format); err != nil {
				fmt.Fprintf(errOut, "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(errOut, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(errOut, "trace: close error: %v\n", err)
		}
	}, nil
}

func dumpRing(d trace.Dumper, path string, format trace.Format) error {
	w, err := trace.OpenOutput(path)
	if err != nil {
		return err
	}
	if err := d.Dump(w, format); err != nil {
		return err
	}
	if c, ok := w.(interface{ Close() error }); ok && path != "" && path != "-" {
		return c.Close()
	}
	return nil
}
