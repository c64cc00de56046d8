package timing

import "github.com/sarchlab/axiconnect/sim/hooking"

// An Engine owns simulated time and dispatches scheduled events in order.
type Engine interface {
	hooking.Hookable

	// Now returns the time of the event being dispatched.
	Now() VTimeInSec

	// Schedule queues an event. The event must not be earlier than Now.
	Schedule(e Event)

	// Run dispatches events until the queue drains or a handler fails.
	Run() error

	// Pause holds the engine before its next event.
	Pause()

	// Continue releases a paused engine.
	Continue()
}
