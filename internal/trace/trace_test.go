package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLevelAllows(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeRun, false},
		{LevelPhase, ScopeRun, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
		{LevelDebug, 0, false},
	}
	for _, tc := range cases {
		if got := tc.level.Allows(tc.scope); got != tc.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStream(&buf, LevelDetail, FormatNDJSON)

	run := Begin(tr, ScopeRun, "check", 0)
	file := Begin(tr, ScopeFile, "file:div.hpp", run.ID())
	decl := Begin(tr, ScopeDecl, "decl:div", file.ID())
	if decl != nil {
		t.Fatal("decl span must be filtered at detail level")
	}
	decl.Attr("documented", "true").End("")
	file.Attr("decls", "3").End("")
	run.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d events, want 4:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Scope != "file" || ev.Attrs["decls"] != "3" || ev.Parent != run.ID() {
		t.Errorf("unexpected file end event: %+v", ev)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStream(&buf, LevelDebug, FormatText)
	run := Begin(tr, ScopeRun, "parse", 0)
	run.Point(ScopeDecl, "decl:div", "local")
	run.End("")

	out := buf.String()
	for _, want := range []string{"> parse\n", "    * decl:div (local)\n", "< parse\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRing(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeDecl, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatAuto); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "* d") {
		t.Errorf("dump misses last event:\n%s", buf.String())
	}
}

func TestNewBothFansOut(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeRun, "load", 0).End("")
	if strings.Count(buf.String(), "load") != 2 {
		t.Errorf("stream output:\n%s", buf.String())
	}
	f, ok := tr.(*fanout)
	if !ok {
		t.Fatalf("New(both) = %T", tr)
	}
	ring, ok := f.sinks[1].(*Ring)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatal("ring did not receive the events")
	}
}

func TestNewRingIsDumper(t *testing.T) {
	tr, err := New(Config{Level: LevelDebug, Mode: ModeRing, RingSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(Dumper); !ok {
		t.Fatalf("ring tracer %T does not implement Dumper", tr)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context must yield Nop")
	}
	r := NewRing(8, LevelDetail)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatal("tracer lost in context")
	}

	parent := Start(ctx, ScopeRun, "check")
	ctx = WithSpan(ctx, parent)
	child := Start(ctx, ScopeFile, "file:a.cc")
	child.End("")
	parent.End("")

	snap := r.Snapshot()
	if len(snap) != 4 || snap[1].Parent != parent.ID() {
		t.Fatalf("unexpected events: %+v", snap)
	}
	if WithSpan(ctx, nil) != ctx {
		t.Error("nil span must not change the context")
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat = %v, %v", f, err)
	}
	if FormatAuto.resolve("trace.jsonl") != FormatNDJSON || FormatAuto.resolve("-") != FormatText {
		t.Error("auto format not resolved from path")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || Enabled(tr) {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHeartbeat(t *testing.T) {
	var out lockedBuffer
	tr := NewStream(&out, LevelPhase, FormatText)
	stop := StartHeartbeat(context.Background(), tr, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "heartbeat") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()
	if !strings.Contains(out.String(), "~ heartbeat (#1)") {
		t.Fatalf("no heartbeat in:\n%s", out.String())
	}

	StartHeartbeat(context.Background(), Nop, time.Millisecond)()
}
