package hardware

import (
	"errors"
	"log"

	"github.com/sarchlab/axiconnect/sim/hooking"
	"github.com/sarchlab/axiconnect/sim/timing"
)

// HookPosSettled is triggered once all wires are stable in a cycle, before the
// clock edge. The hook item is the current cycle.
var HookPosSettled = &hooking.HookPos{Name: "Settled"}

// HookPosCycleEnd is triggered after the clock edge. The hook item is the
// number of cycles completed.
var HookPosCycleEnd = &hooking.HookPos{Name: "CycleEnd"}

// ErrCycleLimit is returned by RunUntil when the condition does not hold
// within the given number of cycles.
var ErrCycleLimit = errors.New("cycle limit reached")

// A Domain is a group of components that share one clock.
type Domain struct {
	hooking.HookableBase

	name           string
	engine         timing.Engine
	freq           timing.Freq
	ticker         *timing.TickScheduler
	maxDeltaCycles int

	components []Component
	signals    []Signal

	cycle     uint64
	lastCycle uint64
	stopCond  func() bool
}

// Name returns the name of the domain.
func (d *Domain) Name() string {
	return d.name
}

// Cycle returns the number of completed cycles.
func (d *Domain) Cycle() uint64 {
	return d.cycle
}

// Now returns the simulated time of the engine that drives the domain.
func (d *Domain) Now() timing.VTimeInSec {
	return d.engine.Now()
}

// Freq returns the clock frequency of the domain.
func (d *Domain) Freq() timing.Freq {
	return d.freq
}

// Engine returns the engine that drives the domain.
func (d *Domain) Engine() timing.Engine {
	return d.engine
}

// Register adds a component to the domain. Components are evaluated and
// ticked in registration order.
func (d *Domain) Register(c Component) {
	for _, existing := range d.components {
		if existing.Name() == c.Name() {
			log.Panicf("component %s already registered", c.Name())
		}
	}

	d.components = append(d.components, c)
}

// Components returns all the registered components.
func (d *Domain) Components() []Component {
	return d.components
}

// Component returns the component with the given name, or nil.
func (d *Domain) Component(name string) Component {
	for _, c := range d.components {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// Signals returns all the wires of the domain.
func (d *Domain) Signals() []Signal {
	return d.signals
}

func (d *Domain) addSignal(s Signal) {
	d.signals = append(d.signals, s)
}

// Step runs one clock cycle: settle, settled hooks, clock edge, cycle end
// hooks.
func (d *Domain) Step() {
	d.settle()

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosSettled,
		Item:   d.cycle,
	})

	for _, c := range d.components {
		c.Tick()
	}

	d.cycle++

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosCycleEnd,
		Item:   d.cycle,
	})
}

func (d *Domain) settle() {
	for pass := 0; pass < d.maxDeltaCycles; pass++ {
		for _, s := range d.signals {
			s.latch()
		}

		for _, c := range d.components {
			c.Evaluate()
		}

		if !d.anySignalChanged() {
			return
		}
	}

	log.Panicf("%s: signals not stable after %d delta cycles at cycle %d, "+
		"combinational loop", d.name, d.maxDeltaCycles, d.cycle)
}

func (d *Domain) anySignalChanged() bool {
	for _, s := range d.signals {
		if s.changed() {
			return true
		}
	}

	return false
}

// Handle runs one cycle for every tick event and keeps ticking until the
// current run is finished.
func (d *Domain) Handle(e timing.Event) error {
	if _, ok := e.(timing.TickEvent); !ok {
		log.Panicf("domain %s cannot handle event %T", d.name, e)
	}

	if d.finished() {
		return nil
	}

	d.Step()

	if !d.finished() {
		d.ticker.TickLater()
	}

	return nil
}

func (d *Domain) finished() bool {
	if d.cycle >= d.lastCycle {
		return true
	}

	return d.stopCond != nil && d.stopCond()
}

// RunCycles runs the domain for n cycles.
func (d *Domain) RunCycles(n uint64) error {
	return d.run(nil, n)
}

// RunUntil runs the domain until cond holds. It returns ErrCycleLimit if cond
// still does not hold after maxCycles cycles.
func (d *Domain) RunUntil(cond func() bool, maxCycles uint64) error {
	err := d.run(cond, maxCycles)
	if err != nil {
		return err
	}

	if !cond() {
		return ErrCycleLimit
	}

	return nil
}

func (d *Domain) run(cond func() bool, n uint64) error {
	d.stopCond = cond
	d.lastCycle = d.cycle + n

	defer func() {
		d.stopCond = nil
	}()

	if d.finished() {
		return nil
	}

	if d.cycle == 0 {
		d.ticker.TickNow()
	} else {
		d.ticker.TickLater()
	}

	return d.engine.Run()
}
