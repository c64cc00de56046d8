// Package tracing turns the hooks of interconnect components into tasks and
// hands the tasks to tracers that log, count or record them.
package tracing

import "fmt"

// Task kinds.
const (
	KindLock  = "lock"
	KindBlock = "block"
	KindRoute = "route"
)

// A Task is a span of cycles that a component spends on something. A crossbar
// holding a lock, a throttle holding back a request and a demux serving a
// burst are tasks.
type Task struct {
	ID         string
	ParentID   string
	Kind       string
	What       string
	Where      string
	StartCycle uint64
	EndCycle   uint64
	Detail     any
}

// Cycles returns the number of cycles that the task lasts.
func (t Task) Cycles() uint64 {
	return t.EndCycle - t.StartCycle
}

func (t Task) String() string {
	return fmt.Sprintf("%s %s %s %s", t.Where, t.Kind, t.What, t.ID)
}

// TaskFilter is a function that can filter interesting tasks. If this
// function returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindIs returns a TaskFilter that keeps tasks of the given kind.
func KindIs(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
