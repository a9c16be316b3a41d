package trace

import (
	"context"
	"fmt"
	"time"
)

// StartHeartbeat emits a heartbeat every interval until ctx is done or the
// returned stop is called. status, when set, fills the event detail, so a
// stuck build shows what it was waiting on.
func StartHeartbeat(ctx context.Context, t Tracer, interval time.Duration, status func() string) (stop func()) {
	if t == nil || t.Level() == LevelOff || interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			detail := fmt.Sprintf("#%d", n)
			if status != nil {
				detail += " " + status()
			}
			record(t, KindHeartbeat, ScopeDriver, 0, 0, "heartbeat", detail, nil)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
