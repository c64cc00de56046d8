package tracing

import (
	"sort"
	"sync"
)

// TaskStats summarizes the finished tasks of the same location, kind and
// subject.
type TaskStats struct {
	Where       string
	Kind        string
	What        string
	Count       int
	TotalCycles uint64
	MaxCycles   uint64
}

// AverageCycles returns the mean duration of the tasks.
func (s TaskStats) AverageCycles() float64 {
	if s.Count == 0 {
		return 0
	}

	return float64(s.TotalCycles) / float64(s.Count)
}

type statsKey struct {
	where, kind, what string
}

// StatsTracer accumulates counts and durations of finished tasks. If tasks
// overlap, their durations are simply added.
type StatsTracer struct {
	filter TaskFilter

	lock  sync.Mutex
	stats map[statsKey]*TaskStats
}

// NewStatsTracer creates a StatsTracer. A nil filter keeps every task.
func NewStatsTracer(filter TaskFilter) *StatsTracer {
	return &StatsTracer{
		filter: filter,
		stats:  make(map[statsKey]*TaskStats),
	}
}

// StartTask does nothing.
func (t *StatsTracer) StartTask(_ Task) {
	// Do nothing
}

// EndTask adds the task to its group.
func (t *StatsTracer) EndTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	key := statsKey{task.Where, task.Kind, task.What}

	s, ok := t.stats[key]
	if !ok {
		s = &TaskStats{Where: task.Where, Kind: task.Kind, What: task.What}
		t.stats[key] = s
	}

	s.Count++
	s.TotalCycles += task.Cycles()

	if task.Cycles() > s.MaxCycles {
		s.MaxCycles = task.Cycles()
	}
}

// Stats returns all groups ordered by location, kind and subject.
func (t *StatsTracer) Stats() []TaskStats {
	t.lock.Lock()
	defer t.lock.Unlock()

	list := make([]TaskStats, 0, len(t.stats))
	for _, s := range t.stats {
		list = append(list, *s)
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Where != b.Where {
			return a.Where < b.Where
		}

		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}

		return a.What < b.What
	})

	return list
}
