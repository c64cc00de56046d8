package tracing

// CycleTeller can tell the current cycle.
type CycleTeller interface {
	Cycle() uint64
}

// A Tracer can collect task traces. StartTask and EndTask of the same task
// carry the same ID. EndTask carries the start cycle too.
type Tracer interface {
	StartTask(task Task)
	EndTask(task Task)
}
