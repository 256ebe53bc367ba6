package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
}

// Dumper is a tracer that keeps events in memory.
type Dumper interface {
	Dump(w io.Writer, format Format) error
}

// Enabled reports whether t records anything at all.
func Enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

// Mode selects where events go.
type Mode uint8

const (
	ModeStream Mode = iota + 1
	ModeRing
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeStream, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

// DefaultRingSize is used when Config.RingSize is not positive.
const DefaultRingSize = 4096

// Config describes a tracer.
type Config struct {
	Level    Level
	Mode     Mode
	Format   Format
	Output   io.Writer // stream destination; nil means OutputPath
	Path     string    // "-" or "" for stderr
	RingSize int
}

// New builds the tracer cfg describes. LevelOff always yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	format := cfg.Format.resolve(cfg.Path)

	switch cfg.Mode {
	case ModeRing:
		return NewRing(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
		w := cfg.Output
		if w == nil {
			var err error
			if w, err = OpenOutput(cfg.Path); err != nil {
				return nil, err
			}
		}
		stream := NewStream(w, cfg.Level, format)
		if cfg.Mode == ModeStream {
			return stream, nil
		}
		return Fanout(cfg.Level, stream, NewRing(cfg.RingSize, cfg.Level)), nil
	}
	return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
}

// OpenOutput opens path for writing; "" and "-" mean stderr.
func OpenOutput(path string) (io.Writer, error) {
	if path == "" || path == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }

// Nop drops everything.
var Nop Tracer = nopTracer{}

type fanout struct {
	level Level
	sinks []Tracer
}

// Fanout sends each event to every sink.
func Fanout(level Level, sinks ...Tracer) Tracer {
	return &fanout{level: level, sinks: sinks}
}

func (f *fanout) Emit(ev *Event) {
	for _, s := range f.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (f *fanout) Flush() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (f *fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (f *fanout) Level() Level { return f.level }
