// Package trace records what a documentation check is doing.
//
// # Usage
//
//	schreiber check --trace=- --trace-level=detail --index decls.yaml
//
// # Sinks
//
//   - Nop: disabled tracing, no allocations
//   - Stream: every event is written as soon as it happens
//   - Ring: the last N events stay in memory and are dumped when the run fails
//
// ModeBoth fans events out to a stream and a ring.
//
// # Levels and scopes
//
// LevelPhase emits ScopeRun events (load, parse, flush). LevelDetail adds
// ScopeFile. LevelDebug adds ScopeDecl.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Start(ctx, trace.ScopeRun, "parse")
//	defer span.End("")
//	ctx = trace.WithSpan(ctx, span)
package trace
