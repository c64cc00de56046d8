package tracing

import "sync"

// BusyTimeTracer counts the cycles in which a location has at least one task
// of interest in flight. Overlapping tasks at the same location are counted
// once.
type BusyTimeTracer struct {
	filter TaskFilter

	lock      sync.Mutex
	inflight  map[string]int
	busySince map[string]uint64
	busy      map[string]uint64
}

// NewBusyTimeTracer creates a BusyTimeTracer. A nil filter keeps every task.
func NewBusyTimeTracer(filter TaskFilter) *BusyTimeTracer {
	return &BusyTimeTracer{
		filter:    filter,
		inflight:  make(map[string]int),
		busySince: make(map[string]uint64),
		busy:      make(map[string]uint64),
	}
}

// BusyCycles returns the busy cycles of a location, up to now for tasks that
// are still running.
func (t *BusyTimeTracer) BusyCycles(where string, now uint64) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	busy := t.busy[where]
	if t.inflight[where] > 0 {
		busy += now - t.busySince[where]
	}

	return busy
}

// StartTask marks the location busy.
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.inflight[task.Where] == 0 {
		t.busySince[task.Where] = task.StartCycle
	}

	t.inflight[task.Where]++
}

// EndTask marks the location idle when its last task ends.
func (t *BusyTimeTracer) EndTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.inflight[task.Where] == 0 {
		return
	}

	t.inflight[task.Where]--
	if t.inflight[task.Where] == 0 {
		t.busy[task.Where] += task.EndCycle - t.busySince[task.Where]
	}
}
