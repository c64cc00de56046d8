package fifo

import (
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

// A Stage is a handshake FIFO. It accepts beats on In and offers them in
// order on Out. It reports its fill level so that an admission throttle can
// reserve space in it.
type Stage[T comparable] struct {
	*hardware.ComponentBase

	In  *axi.Channel[T]
	Out *axi.Channel[T]

	buffer       *Buffer[T]
	levelLatency int
	delayedLevel int

	inFire    bool
	outFire   bool
	inPayload T
}

// Level returns the number of beats held, as seen by other components this
// cycle. With a level latency of one, the value lags the buffer by a cycle.
func (s *Stage[T]) Level() int {
	if s.levelLatency == 0 {
		return s.buffer.Size()
	}

	return s.delayedLevel
}

// Depth returns the capacity of the FIFO.
func (s *Stage[T]) Depth() int {
	return s.buffer.Capacity()
}

// LevelLatency returns how many cycles the reported level lags behind the
// handshakes that change it.
func (s *Stage[T]) LevelLatency() int {
	return s.levelLatency
}

// Buffer returns the underlying storage.
func (s *Stage[T]) Buffer() *Buffer[T] {
	return s.buffer
}

// Evaluate drives the handshake signals.
func (s *Stage[T]) Evaluate() {
	if s.buffer.Capacity() == 0 {
		axi.Forward(s.In, s.Out)
		return
	}

	s.In.Ready.Set(s.buffer.CanPush())

	if head, ok := s.buffer.Peek(); ok {
		s.Out.Drive(head)
	} else {
		s.Out.Idle()
	}

	s.inFire = s.In.Fire()
	s.outFire = s.Out.Fire()
	s.inPayload = s.In.Payload.Get()
}

// Tick moves the beats that were handshaked in this cycle.
func (s *Stage[T]) Tick() {
	s.delayedLevel = s.buffer.Size()

	if s.outFire {
		if _, ok := s.buffer.Pop(); !ok {
			log.Panicf("%s: pop from empty fifo", s.Name())
		}
	}

	if s.inFire {
		s.buffer.Push(s.inPayload)
	}

	s.inFire = false
	s.outFire = false
}

// Builder can build FIFO stages.
type Builder[T comparable] struct {
	domain       *hardware.Domain
	depth        int
	levelLatency int
	in           *axi.Channel[T]
	out          *axi.Channel[T]
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder[T comparable]() Builder[T] {
	return Builder[T]{
		depth: 16,
	}
}

// WithDomain sets the domain that the stage belongs to.
func (b Builder[T]) WithDomain(d *hardware.Domain) Builder[T] {
	b.domain = d
	return b
}

// WithDepth sets the capacity. A depth of zero builds a pass-through.
func (b Builder[T]) WithDepth(depth int) Builder[T] {
	b.depth = depth
	return b
}

// WithLevelLatency sets the number of cycles, 0 or 1, by which the reported
// level lags the handshakes.
func (b Builder[T]) WithLevelLatency(k int) Builder[T] {
	b.levelLatency = k
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

	if b.levelLatency != 0 && b.levelLatency != 1 {
		log.Panicf("level latency must be 0 or 1, got %d", b.levelLatency)
	}

	s := &Stage[T]{
		ComponentBase: hardware.NewComponentBase(name),
		In:            b.in,
		Out:           b.out,
		buffer:        NewBuffer[T](name+".Buf", b.depth),
		levelLatency:  b.levelLatency,
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
