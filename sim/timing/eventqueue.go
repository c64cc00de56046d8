package timing

import "container/heap"

// EventQueue orders events by time. Primary events come before secondary
// events of the same time, and equal events pop in push order. An EventQueue
// is not safe for concurrent use.
type EventQueue struct {
	entries entryHeap
	pushed  uint64
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	q.pushed++
	heap.Push(&q.entries, entry{
		evt:       evt,
		time:      evt.Time(),
		secondary: evt.IsSecondary(),
		order:     q.pushed,
	})
}

// Pop removes and returns the first event. It panics on an empty queue.
func (q *EventQueue) Pop() Event {
	return heap.Pop(&q.entries).(entry).evt
}

// Peek returns the first event without removing it.
func (q *EventQueue) Peek() Event {
	return q.entries[0].evt
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.entries)
}

type entry struct {
	evt       Event
	time      VTimeInSec
	secondary bool
	order     uint64
}

func (a entry) before(b entry) bool {
	switch {
	case a.time != b.time:
		return a.time < b.time
	case a.secondary != b.secondary:
		return !a.secondary
	default:
		return a.order < b.order
	}
}

type entryHeap []entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() any {
	last := len(*h) - 1
	e := (*h)[last]
	(*h)[last] = entry{}
	*h = (*h)[:last]

	return e
}
