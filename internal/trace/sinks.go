package trace

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

var seq atomic.Uint64

// Stream writes every accepted event right away.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{w: w, level: level, format: format.resolve("")}
}

func (s *Stream) Emit(ev *Event) {
	if !accepts(s.level, ev) {
		return
	}
	ev.Seq = seq.Add(1)
	data := FormatEvent(ev, s.format)

	s.mu.Lock()
	defer s.mu.Unlock()
	// ошибки записи трассы не должны ронять проверку
	_, _ = s.w.Write(data) //nolint:errcheck
}

func (s *Stream) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the writer unless it is stdout or stderr.
func (s *Stream) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if f, ok := s.w.(*os.File); ok && (f == os.Stderr || f == os.Stdout) {
		return nil
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Stream) Level() Level { return s.level }

// Ring keeps the most recent events.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	level  Level
}

func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{events: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if !accepts(r.level, ev) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *ev
	stored.Seq = seq.Add(1)
	r.events[r.next] = stored
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// Snapshot returns the stored events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

func (r *Ring) Dump(w io.Writer, format Format) error {
	format = format.resolve("")
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ring) Flush() error { return nil }
func (r *Ring) Close() error { return nil }
func (r *Ring) Level() Level { return r.level }

func accepts(level Level, ev *Event) bool {
	if ev.Kind == KindHeartbeat {
		return level > LevelOff
	}
	return level.Allows(ev.Scope)
}
