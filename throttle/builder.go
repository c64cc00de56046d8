package throttle

import (
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/pipeline"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

// Builder can build read and write throttles.
type Builder struct {
	domain       *hardware.Domain
	buffer       LevelReporter
	mode         pipeline.ThroughputMode
	levelLatency int
	maxBurst     int
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		mode:     pipeline.FullThroughput,
		maxBurst: 256,
	}
}

// WithDomain sets the domain that the throttle belongs to.
func (b Builder) WithDomain(d *hardware.Domain) Builder {
	b.domain = d
	return b
}

// WithLevelReporter sets the buffer that the throttle protects.
func (b Builder) WithLevelReporter(lr LevelReporter) Builder {
	b.buffer = lr
	return b
}

// WithThroughputMode sets the mode of the address register slice.
func (b Builder) WithThroughputMode(mode pipeline.ThroughputMode) Builder {
	b.mode = mode
	return b
}

// WithLevelLatency sets how many cycles, 0 or 1, the buffer level lags the
// payload handshakes that change it.
func (b Builder) WithLevelLatency(k int) Builder {
	b.levelLatency = k
	return b
}

// WithMaxBurstBeats sets the longest burst a request may carry.
func (b Builder) WithMaxBurstBeats(n int) Builder {
	b.maxBurst = n
	return b
}

// BuildRead creates a ReadThrottle. The throttle owns In.AR and drives
// Out.AR through its register slice. Out.R is forwarded to In.R.
func (b Builder) BuildRead(name string, in, out *axi.ReadPort) *ReadThrottle {
	b.mustBeValid()

	if in == nil {
		in = axi.NewReadPort(b.domain, name+".In")
	}

	if out == nil {
		out = axi.NewReadPort(b.domain, name+".Out")
	}

	t := &ReadThrottle{
		ComponentBase: hardware.NewComponentBase(name),
		In:            in,
		Out:           out,
	}
	t.gate = b.buildGate(t.ComponentBase, in.AR, out.AR,
		NewUnsignedCounter(b.buffer.Depth()))
	t.gate.owner = t

	b.domain.Register(t)

	return t
}

// BuildWrite creates a WriteThrottle. The throttle owns In.AW and drives
// Out.AW through its register slice. W and B are forwarded.
func (b Builder) BuildWrite(name string, in, out *axi.WritePort) *WriteThrottle {
	b.mustBeValid()

	if in == nil {
		in = axi.NewWritePort(b.domain, name+".In")
	}

	if out == nil {
		out = axi.NewWritePort(b.domain, name+".Out")
	}

	t := &WriteThrottle{
		ComponentBase: hardware.NewComponentBase(name),
		In:            in,
		Out:           out,
	}
	t.gate = b.buildGate(t.ComponentBase, in.AW, out.AW,
		NewSignedCounter(b.buffer.Depth()))
	t.gate.owner = t

	b.domain.Register(t)

	return t
}

func (b Builder) buildGate(
	comp *hardware.ComponentBase,
	in, out *axi.Channel[axi.Addr],
	counter *CreditCounter,
) gate {
	stage := pipeline.MakeBuilder[axi.Addr]().
		WithDomain(b.domain).
		WithMode(b.mode).
		WithOutput(out).
		Build(comp.Name() + ".AddrStage")

	return gate{
		comp:         comp,
		in:           in,
		stage:        stage,
		buffer:       b.buffer,
		counter:      counter,
		maxBurst:     b.maxBurst,
		levelLatency: b.levelLatency,
	}
}

func (b Builder) mustBeValid() {
	if b.domain == nil {
		panic("domain is not given")
	}

	if b.buffer == nil {
		panic("level reporter is not given")
	}

	if b.levelLatency != 0 && b.levelLatency != 1 {
		log.Panicf("level latency must be 0 or 1, got %d", b.levelLatency)
	}

	if r, ok := b.buffer.(levelLatencyReporter); ok &&
		r.LevelLatency() != b.levelLatency {
		log.Panicf("level latency %d does not match the buffer latency %d",
			b.levelLatency, r.LevelLatency())
	}

	if b.maxBurst < 1 {
		log.Panicf("max burst must be positive, got %d", b.maxBurst)
	}

	if b.buffer.Depth() < b.maxBurst {
		log.Panicf("buffer depth %d cannot hold a burst of %d beats",
			b.buffer.Depth(), b.maxBurst)
	}
}
