package collect

import (
	"context"
	"sync"
	"time"
)

// netTracker follows in-flight browser requests so the collector can wait
// for network quiescence instead of a fixed timer. A page is considered
// quiet once no request has been in flight for a settle window.
type netTracker struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	last     time.Time // last time the in-flight set changed
}

func newNetTracker() *netTracker {
	return &netTracker{
		inflight: make(map[string]struct{}),
		last:     time.Now(),
	}
}

func (t *netTracker) started(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	t.last = time.Now()
}

func (t *netTracker) finished(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)
	t.last = time.Now()
}

// quietFor reports whether there are no in-flight requests and the set has
// been unchanged for at least the settle window.
func (t *netTracker) quietFor(settle time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && time.Since(t.last) >= settle
}

// waitQuiet blocks until the network is quiet for the settle window or the
// context expires. An expired context is returned as its error; callers may
// treat it as "good enough" and work with what was observed.
func (t *netTracker) waitQuiet(ctx context.Context, settle time.Duration) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if t.quietFor(settle) {
				return nil
			}
		}
	}
}
