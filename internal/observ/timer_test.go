package observ

import (
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	load := tm.Start("load")
	if got := tm.Stop(load, "2 files"); got != time.Millisecond {
		t.Fatalf("load took %v", got)
	}
	tm.Stop(load, "again")
	parse := tm.Start("parse")
	tm.Start("open")
	tm.Stop(parse, "")
	tm.Stop(nil, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v, want load and parse", rep.Phases)
	}
	if rep.Phases[0].Name != "load" || rep.Phases[0].Note != "2 files" || rep.Phases[0].DurationMS != 1 {
		t.Errorf("unexpected first phase: %+v", rep.Phases[0])
	}
	if rep.Phases[1].Name != "parse" || rep.Phases[1].DurationMS != 2 {
		t.Errorf("unexpected second phase: %+v", rep.Phases[1])
	}
	if rep.TotalMS != 3 {
		t.Errorf("total = %v, want 3", rep.TotalMS)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || rep.Phases != nil {
		t.Errorf("empty timer report = %+v", rep)
	}
}
