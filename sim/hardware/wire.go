package hardware

import "fmt"

// Signal is the type-erased view of a Wire used by the domain and by
// inspection tools.
type Signal interface {
	Name() string
	Value() any

	latch()
	changed() bool
}

// A Wire is a named combinational signal. Components set the wires they drive
// in Evaluate and read them in both Evaluate and Tick. A wire keeps its value
// across cycles until it is set again.
type Wire[T comparable] struct {
	name     string
	value    T
	snapshot T
}

// NewWire creates a wire and registers it with the domain.
func NewWire[T comparable](d *Domain, name string) *Wire[T] {
	w := &Wire[T]{name: name}
	d.addSignal(w)

	return w
}

// Name returns the hierarchical name of the wire.
func (w *Wire[T]) Name() string {
	return w.name
}

// Get returns the current value of the wire.
func (w *Wire[T]) Get() T {
	return w.value
}

// Set drives a new value onto the wire.
func (w *Wire[T]) Set(v T) {
	w.value = v
}

// Value returns the current value as an interface.
func (w *Wire[T]) Value() any {
	return w.value
}

func (w *Wire[T]) String() string {
	return fmt.Sprintf("%s=%v", w.name, w.value)
}

func (w *Wire[T]) latch() {
	w.snapshot = w.value
}

func (w *Wire[T]) changed() bool {
	return w.snapshot != w.value
}
