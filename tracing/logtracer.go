package tracing

import (
	"log"
)

// LogTracer prints tasks into a logger.
type LogTracer struct {
	*log.Logger

	filter TaskFilter
}

// NewLogTracer creates a LogTracer. A nil filter keeps every task.
func NewLogTracer(logger *log.Logger, filter TaskFilter) *LogTracer {
	return &LogTracer{
		Logger: logger,
		filter: filter,
	}
}

// StartTask prints the start of the task.
func (t *LogTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.Printf("%d, %s, start %s, %s", task.StartCycle, task.Where,
		task.Kind, task.What)
}

// EndTask prints the end of the task and how long it lasted.
func (t *LogTracer) EndTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.Printf("%d, %s, end %s, %s, %d cycles", task.EndCycle, task.Where,
		task.Kind, task.What, task.Cycles())
}
