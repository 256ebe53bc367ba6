package trace

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// StartHeartbeat emits a heartbeat event every interval until the returned
// stop function is called or ctx is done. Heartbeats with no span ending
// between them point at a stuck run.
func StartHeartbeat(ctx context.Context, t Tracer, interval time.Duration) (stop func()) {
	if !Enabled(t) || interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				t.Emit(&Event{
					Time:   now,
					Kind:   KindHeartbeat,
					Scope:  ScopeRun,
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(n),
				})
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
