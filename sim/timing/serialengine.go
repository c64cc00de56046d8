package timing

import (
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/axiconnect/sim/hooking"
)

// SerialEngine dispatches events one at a time on the goroutine that calls
// Run. Pause and Continue may be called from other goroutines, such as a
// monitoring server, but not from an event handler.
type SerialEngine struct {
	hooking.HookableBase

	mu      sync.Mutex
	idle    *sync.Cond
	now     VTimeInSec
	queue   *EventQueue
	paused  bool
	running bool
	busy    bool
}

// NewSerialEngine creates an engine at time zero.
func NewSerialEngine() *SerialEngine {
	e := &SerialEngine{queue: NewEventQueue()}
	e.idle = sync.NewCond(&e.mu)

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// Now returns the time of the event being dispatched.
func (e *SerialEngine) Now() VTimeInSec {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.now
}

// Schedule queues an event. Scheduling into the past panics.
func (e *SerialEngine) Schedule(evt Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if evt.Time() < e.now {
		log.Panicf("event %T at %.10f is earlier than now (%.10f)",
			evt, evt.Time(), e.now)
	}

	e.queue.Push(evt)
}

// Run dispatches events until none is left. It returns the first handler
// error, leaving the remaining events queued.
func (e *SerialEngine) Run() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		panic("SerialEngine.Run is not reentrant")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	for {
		evt := e.take()
		if evt == nil {
			return nil
		}

		err := e.dispatch(evt)
		e.release()

		if err != nil {
			return err
		}
	}
}

// take waits while the engine is paused and then pops the next event,
// advancing time to it.
func (e *SerialEngine) take() Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.paused {
		e.idle.Wait()
	}

	if e.queue.Len() == 0 {
		return nil
	}

	evt := e.queue.Pop()
	e.now = evt.Time()
	e.busy = true

	return evt
}

func (e *SerialEngine) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()

	e.idle.Broadcast()
}

func (e *SerialEngine) dispatch(evt Event) error {
	ctx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	if err != nil {
		return fmt.Errorf("event %T at %.10f: %w", evt, evt.Time(), err)
	}

	return nil
}

// Pause returns once the event in flight, if any, has been handled. No
// further event is dispatched until Continue.
func (e *SerialEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
	for e.busy {
		e.idle.Wait()
	}
}

// Continue releases a paused engine.
func (e *SerialEngine) Continue() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()

	e.idle.Broadcast()
}
