package axi

import "github.com/sarchlab/axiconnect/sim/hardware"

// A Channel is a valid/ready handshake carrying a payload of type T.
type Channel[T comparable] struct {
	name    string
	Valid   *hardware.Wire[bool]
	Ready   *hardware.Wire[bool]
	Payload *hardware.Wire[T]
}

// NewChannel creates the wires of a channel in the given domain.
func NewChannel[T comparable](d *hardware.Domain, name string) *Channel[T] {
	return &Channel[T]{
		name:    name,
		Valid:   hardware.NewWire[bool](d, name+".Valid"),
		Ready:   hardware.NewWire[bool](d, name+".Ready"),
		Payload: hardware.NewWire[T](d, name+".Payload"),
	}
}

// Name returns the name of the channel.
func (c *Channel[T]) Name() string {
	return c.name
}

// Fire tells if a transfer happens in the current cycle.
func (c *Channel[T]) Fire() bool {
	return c.Valid.Get() && c.Ready.Get()
}

// Drive sets valid and the payload. It is called by the producer.
func (c *Channel[T]) Drive(payload T) {
	c.Valid.Set(true)
	c.Payload.Set(payload)
}

// Idle clears valid and the payload. It is called by the producer.
func (c *Channel[T]) Idle() {
	var zero T

	c.Valid.Set(false)
	c.Payload.Set(zero)
}

// Forward connects the producer side of from to the consumer side of to for
// the current cycle.
func Forward[T comparable](from, to *Channel[T]) {
	to.Valid.Set(from.Valid.Get())
	to.Payload.Set(from.Payload.Get())
	from.Ready.Set(to.Ready.Get())
}

// ForwardIf forwards the channel when cond holds and otherwise isolates both
// sides: from sees ready low and to sees valid low.
func ForwardIf[T comparable](cond bool, from, to *Channel[T]) {
	if cond {
		Forward(from, to)
		return
	}

	from.Ready.Set(false)
	to.Idle()
}
