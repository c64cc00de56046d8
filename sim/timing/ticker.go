package timing

import "sync"

// TickScheduler keeps at most one pending tick per cycle for a handler.
type TickScheduler struct {
	mu      sync.Mutex
	handler Handler
	engine  Engine
	freq    Freq

	// latest is the time of the last tick handed to the engine.
	latest VTimeInSec
}

// NewTickScheduler creates a scheduler that ticks handler at freq.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	return &TickScheduler{
		handler: handler,
		engine:  engine,
		freq:    freq,
		latest:  -1,
	}
}

// TickNow schedules a tick on the current clock edge.
func (t *TickScheduler) TickNow() {
	t.tickAt(t.freq.ThisTick(t.engine.Now()))
}

// TickLater schedules a tick on the next clock edge.
func (t *TickScheduler) TickLater() {
	t.tickAt(t.freq.NextTick(t.engine.Now()))
}

func (t *TickScheduler) tickAt(at VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at <= t.latest {
		return
	}

	t.latest = at
	t.engine.Schedule(TickEvent{At: at, Target: t.handler})
}
