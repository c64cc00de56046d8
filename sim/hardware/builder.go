package hardware

import (
	"log"

	"github.com/sarchlab/axiconnect/sim/naming"
	"github.com/sarchlab/axiconnect/sim/timing"
)

// DomainBuilder can build clock domains.
type DomainBuilder struct {
	engine         timing.Engine
	freq           timing.Freq
	maxDeltaCycles int
}

// MakeDomainBuilder creates a DomainBuilder with default parameters.
func MakeDomainBuilder() DomainBuilder {
	return DomainBuilder{
		freq:           1 * timing.GHz,
		maxDeltaCycles: 64,
	}
}

// WithEngine sets the engine that drives the domain. A SerialEngine is
// created if no engine is given.
func (b DomainBuilder) WithEngine(engine timing.Engine) DomainBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency.
func (b DomainBuilder) WithFreq(freq timing.Freq) DomainBuilder {
	b.freq = freq
	return b
}

// WithMaxDeltaCycles sets how many evaluate passes a cycle may take before
// the domain reports a combinational loop.
func (b DomainBuilder) WithMaxDeltaCycles(n int) DomainBuilder {
	b.maxDeltaCycles = n
	return b
}

// Build creates a new Domain.
func (b DomainBuilder) Build(name string) *Domain {
	naming.NameMustBeValid(name)

	if b.maxDeltaCycles <= 0 {
		log.Panic("max delta cycles must be positive")
	}

	engine := b.engine
	if engine == nil {
		engine = timing.NewSerialEngine()
	}

	d := &Domain{
		name:           name,
		engine:         engine,
		freq:           b.freq,
		maxDeltaCycles: b.maxDeltaCycles,
	}
	d.ticker = timing.NewTickScheduler(d, engine, b.freq)

	return d
}
