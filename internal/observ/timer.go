// Package observ measures the phases of a check.
package observ

import (
	"sync"
	"time"
)

// Phase is one measured interval of a run.
type Phase struct {
	Name    string
	Started time.Time
	Elapsed time.Duration
	Note    string
	done    bool
}

// Timer collects phases in the order they were started. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	now    func() time.Time
	phases []*Phase
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Start opens a phase. Stop it with the returned handle.
func (t *Timer) Start(name string) *Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &Phase{Name: name, Started: t.now()}
	t.phases = append(t.phases, p)
	return p
}

// Stop closes p with note and returns its duration. Stopping twice keeps the
// first result.
func (t *Timer) Stop(p *Phase, note string) time.Duration {
	if p == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !p.done {
		p.Elapsed = t.now().Sub(p.Started)
		p.Note = note
		p.done = true
	}
	return p.Elapsed
}

// PhaseReport is the serialised form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report суммирует завершённые фазы.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report lists the stopped phases; open ones are left out.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var rep Report
	var total time.Duration
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		total += p.Elapsed
		rep.Phases = append(rep.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Elapsed), Note: p.Note})
	}
	rep.TotalMS = millis(total)
	return rep
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
