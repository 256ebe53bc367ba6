package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span is one Begin/End pair. A nil *Span is valid and records nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   map[string]string
}

// Begin opens a span under parent (0 for a root span). It returns nil when
// t does not record scope.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Enabled(t) || !t.Level().Allows(scope) {
		return nil
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:   s.started,
		Kind:   KindBegin,
		Scope:  scope,
		Span:   s.id,
		Parent: parent,
		Name:   name,
	})
	return s
}

// Start opens a span with the context's tracer, under the context's span.
func Start(ctx context.Context, scope Scope, name string) *Span {
	return Begin(FromContext(ctx), scope, name, SpanFromContext(ctx).ID())
}

// Attr records key=value on the end event.
func (s *Span) Attr(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string, 2)
	}
	s.attrs[key] = value
	return s
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindEnd,
		Scope:  s.scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   s.name,
		Detail: detail,
		Attrs:  s.attrs,
	})
	return dur
}

// Point records an instant event under the span.
func (s *Span) Point(scope Scope, name, detail string) {
	if s == nil || !s.tracer.Level().Allows(scope) {
		return
	}
	s.tracer.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: s.id,
		Name:   name,
		Detail: detail,
	})
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
