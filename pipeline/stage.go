// Package pipeline provides a one-cycle register slice for handshake
// channels.
package pipeline

import (
	"fmt"
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

// ThroughputMode selects the tradeoff of a register slice.
type ThroughputMode int

const (
	// FullThroughput uses a skid buffer and moves one transfer per cycle.
	FullThroughput ThroughputMode = iota

	// ReducedThroughput uses a single register with a registered ready. It
	// costs fewer registers but moves one transfer every three cycles.
	ReducedThroughput
)

func (m ThroughputMode) String() string {
	switch m {
	case FullThroughput:
		return "full"
	case ReducedThroughput:
		return "reduced"
	default:
		return fmt.Sprintf("ThroughputMode(%d)", int(m))
	}
}

// ParseThroughputMode converts "full" or "reduced" to a ThroughputMode.
func ParseThroughputMode(s string) (ThroughputMode, error) {
	switch s {
	case "full":
		return FullThroughput, nil
	case "reduced":
		return ReducedThroughput, nil
	default:
		return 0, fmt.Errorf("unknown throughput mode %q", s)
	}
}

// A Stage delays a handshake channel by one cycle. Payloads leave in the
// order they enter.
type Stage[T comparable] struct {
	*hardware.ComponentBase

	In  *axi.Channel[T]
	Out *axi.Channel[T]

	mode ThroughputMode

	mainValid bool
	main      T
	skidValid bool
	skid      T
	readyReg  bool

	inFire    bool
	outFire   bool
	inPayload T
}

// Mode returns the throughput mode of the stage.
func (s *Stage[T]) Mode() ThroughputMode {
	return s.mode
}

// Occupancy returns the number of payloads held.
func (s *Stage[T]) Occupancy() int {
	n := 0
	if s.mainValid {
		n++
	}

	if s.skidValid {
		n++
	}

	return n
}

// Evaluate drives the handshake signals from the registers.
func (s *Stage[T]) Evaluate() {
	switch s.mode {
	case FullThroughput:
		s.In.Ready.Set(!s.skidValid)
	case ReducedThroughput:
		s.In.Ready.Set(s.readyReg)
	}

	if s.mainValid {
		s.Out.Drive(s.main)
	} else {
		s.Out.Idle()
	}

	s.inFire = s.In.Fire()
	s.outFire = s.Out.Fire()
	s.inPayload = s.In.Payload.Get()
}

// Tick updates the registers.
func (s *Stage[T]) Tick() {
	switch s.mode {
	case FullThroughput:
		s.tickSkidBuffer()
	case ReducedThroughput:
		s.tickSingleRegister()
	}

	s.inFire = false
	s.outFire = false
}

func (s *Stage[T]) tickSkidBuffer() {
	var zero T

	if s.outFire {
		s.mainValid = s.skidValid
		s.main = s.skid
		s.skidValid = false
		s.skid = zero
	}

	if !s.inFire {
		return
	}

	if !s.mainValid {
		s.mainValid = true
		s.main = s.inPayload

		return
	}

	if s.skidValid {
		log.Panicf("%s: skid buffer overflow", s.Name())
	}

	s.skidValid = true
	s.skid = s.inPayload
}

func (s *Stage[T]) tickSingleRegister() {
	wasValid := s.mainValid

	if s.outFire {
		s.mainValid = false
	}

	if s.inFire {
		if s.mainValid {
			log.Panicf("%s: register overwritten", s.Name())
		}

		s.mainValid = true
		s.main = s.inPayload
	}

	s.readyReg = !wasValid && !s.inFire
}

// Builder can build pipeline stages.
type Builder[T comparable] struct {
	domain *hardware.Domain
	mode   ThroughputMode
	in     *axi.Channel[T]
	out    *axi.Channel[T]
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder[T comparable]() Builder[T] {
	return Builder[T]{
		mode: FullThroughput,
	}
}

// WithDomain sets the domain that the stage belongs to.
func (b Builder[T]) WithDomain(d *hardware.Domain) Builder[T] {
	b.domain = d
	return b
}

// WithMode sets the throughput mode.
func (b Builder[T]) WithMode(mode ThroughputMode) Builder[T] {
	b.mode = mode
	return b
}

// WithInput connects the stage to an existing input channel.
func (b Builder[T]) WithInput(ch *axi.Channel[T]) Builder[T] {
	b.in = ch
	return b
}

// WithOutput connects the stage to an existing output channel.
func (b Builder[T]) WithOutput(ch *axi.Channel[T]) Builder[T] {
	b.out = ch
	return b
}

// Build creates a new Stage and registers it to the domain.
func (b Builder[T]) Build(name string) *Stage[T] {
	if b.domain == nil {
		panic("domain is not given")
	}

	if b.mode != FullThroughput && b.mode != ReducedThroughput {
		log.Panicf("invalid throughput mode %d", b.mode)
	}

	s := &Stage[T]{
		ComponentBase: hardware.NewComponentBase(name),
		In:            b.in,
		Out:           b.out,
		mode:          b.mode,
		readyReg:      true,
	}

	if s.In == nil {
		s.In = axi.NewChannel[T](b.domain, name+".In")
	}

	if s.Out == nil {
		s.Out = axi.NewChannel[T](b.domain, name+".Out")
	}

	b.domain.Register(s)

	return s
}
