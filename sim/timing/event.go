// Package timing keeps simulated time. Events are ordered in an EventQueue
// and dispatched one at a time by a SerialEngine. Clock domains ask a
// TickScheduler for TickEvents.
package timing

import "github.com/sarchlab/axiconnect/sim/hooking"

// VTimeInSec is a point in simulated time, in seconds.
type VTimeInSec = float64

// An Event is something that happens to a Handler at a given time.
type Event interface {
	Time() VTimeInSec
	Handler() Handler

	// IsSecondary events run after every primary event of the same time.
	IsSecondary() bool
}

// A Handler receives the events addressed to it. A handler should only modify
// its own state when handling an event.
type Handler interface {
	Handle(e Event) error
}

// HookPosBeforeEvent is invoked by an engine right before an event is
// handled. The hook item is the event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is invoked by an engine right after an event is handled.
// The hook item is the event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// TickEvent asks a clocked handler to advance by one cycle.
type TickEvent struct {
	At     VTimeInSec
	Target Handler
}

// Time returns when the tick happens.
func (e TickEvent) Time() VTimeInSec { return e.At }

// Handler returns the handler being ticked.
func (e TickEvent) Handler() Handler { return e.Target }

// IsSecondary is always false for ticks.
func (e TickEvent) IsSecondary() bool { return false }
