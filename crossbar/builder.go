package crossbar

import (
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

type builderBase struct {
	domain    *hardware.Domain
	numInputs int
	policy    Policy
	lite      bool
}

func (b builderBase) mustBeValid() {
	if b.domain == nil {
		panic("domain is not given")
	}

	if b.numInputs <= 0 {
		log.Panicf("number of inputs must be positive, got %d", b.numInputs)
	}
}

// ReadBuilder can build read crossbars.
type ReadBuilder struct {
	builderBase

	inputs []*axi.ReadPort
	out    *axi.ReadPort
}

// MakeReadBuilder creates a ReadBuilder with default parameters.
func MakeReadBuilder() ReadBuilder {
	return ReadBuilder{
		builderBase: builderBase{
			numInputs: 2,
			policy:    RoundRobin,
		},
	}
}

// WithDomain sets the domain that the crossbar belongs to.
func (b ReadBuilder) WithDomain(d *hardware.Domain) ReadBuilder {
	b.domain = d
	return b
}

// WithNumInputs sets the number of initiator ports.
func (b ReadBuilder) WithNumInputs(n int) ReadBuilder {
	b.numInputs = n
	return b
}

// WithPolicy sets the arbitration policy.
func (b ReadBuilder) WithPolicy(p Policy) ReadBuilder {
	b.policy = p
	return b
}

// WithLite treats every R beat as the last one.
func (b ReadBuilder) WithLite(lite bool) ReadBuilder {
	b.lite = lite
	return b
}

// WithInputs connects the crossbar to existing initiator ports. It also sets
// the number of inputs.
func (b ReadBuilder) WithInputs(ports []*axi.ReadPort) ReadBuilder {
	b.inputs = ports
	b.numInputs = len(ports)

	return b
}

// WithOutput connects the crossbar to an existing shared port.
func (b ReadBuilder) WithOutput(port *axi.ReadPort) ReadBuilder {
	b.out = port
	return b
}

// Build creates a ReadCrossbar and registers it to the domain.
func (b ReadBuilder) Build(name string) *ReadCrossbar {
	b.mustBeValid()

	c := &ReadCrossbar{
		ComponentBase: hardware.NewComponentBase(name),
		Inputs:        b.inputs,
		Out:           b.out,
		arbiter:       NewArbiter(b.policy, b.numInputs),
		lite:          b.lite,
	}

	if c.Inputs == nil {
		c.Inputs = axi.NewReadPorts(b.domain, name+".In", b.numInputs)
	}

	if c.Out == nil {
		c.Out = axi.NewReadPort(b.domain, name+".Out")
	}

	c.arIns = channels(c.Inputs,
		func(p *axi.ReadPort) *axi.Channel[axi.Addr] { return p.AR })
	c.rIns = channels(c.Inputs,
		func(p *axi.ReadPort) *axi.Channel[axi.ReadData] { return p.R })

	b.domain.Register(c)

	return c
}

// WriteBuilder can build write crossbars.
type WriteBuilder struct {
	builderBase

	mode           WriteMode
	maxOutstanding int
	inputs         []*axi.WritePort
	out            *axi.WritePort
}

// MakeWriteBuilder creates a WriteBuilder with default parameters.
func MakeWriteBuilder() WriteBuilder {
	return WriteBuilder{
		builderBase: builderBase{
			numInputs: 2,
			policy:    RoundRobin,
		},
		mode:           LockUntilResponse,
		maxOutstanding: 4,
	}
}

// WithDomain sets the domain that the crossbar belongs to.
func (b WriteBuilder) WithDomain(d *hardware.Domain) WriteBuilder {
	b.domain = d
	return b
}

// WithNumInputs sets the number of initiator ports.
func (b WriteBuilder) WithNumInputs(n int) WriteBuilder {
	b.numInputs = n
	return b
}

// WithPolicy sets the arbitration policy.
func (b WriteBuilder) WithPolicy(p Policy) WriteBuilder {
	b.policy = p
	return b
}

// WithMode sets the locking discipline.
func (b WriteBuilder) WithMode(m WriteMode) WriteBuilder {
	b.mode = m
	return b
}

// WithMaxOutstanding sets how many addresses a locked port may issue in
// OutstandingCount mode before it must release the lock.
func (b WriteBuilder) WithMaxOutstanding(n int) WriteBuilder {
	b.maxOutstanding = n
	return b
}

// WithLite treats every W beat as the last one.
func (b WriteBuilder) WithLite(lite bool) WriteBuilder {
	b.lite = lite
	return b
}

// WithInputs connects the crossbar to existing initiator ports. It also sets
// the number of inputs.
func (b WriteBuilder) WithInputs(ports []*axi.WritePort) WriteBuilder {
	b.inputs = ports
	b.numInputs = len(ports)

	return b
}

// WithOutput connects the crossbar to an existing shared port.
func (b WriteBuilder) WithOutput(port *axi.WritePort) WriteBuilder {
	b.out = port
	return b
}

// Build creates a WriteCrossbar and registers it to the domain.
func (b WriteBuilder) Build(name string) *WriteCrossbar {
	b.mustBeValid()

	if b.mode != LockUntilResponse && b.mode != OutstandingCount {
		log.Panicf("invalid write mode %d", b.mode)
	}

	if b.maxOutstanding <= 0 {
		log.Panicf("max outstanding must be positive, got %d",
			b.maxOutstanding)
	}

	c := &WriteCrossbar{
		ComponentBase:  hardware.NewComponentBase(name),
		Inputs:         b.inputs,
		Out:            b.out,
		arbiter:        NewArbiter(b.policy, b.numInputs),
		mode:           b.mode,
		maxOutstanding: b.maxOutstanding,
		lite:           b.lite,
	}

	if c.Inputs == nil {
		c.Inputs = axi.NewWritePorts(b.domain, name+".In", b.numInputs)
	}

	if c.Out == nil {
		c.Out = axi.NewWritePort(b.domain, name+".Out")
	}

	c.awIns = channels(c.Inputs,
		func(p *axi.WritePort) *axi.Channel[axi.Addr] { return p.AW })
	c.wIns = channels(c.Inputs,
		func(p *axi.WritePort) *axi.Channel[axi.WriteData] { return p.W })
	c.bIns = channels(c.Inputs,
		func(p *axi.WritePort) *axi.Channel[axi.WriteResp] { return p.B })

	b.domain.Register(c)

	return c
}
