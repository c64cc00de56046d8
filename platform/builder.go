package platform

import (
	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/config"
	"github.com/sarchlab/axiconnect/crossbar"
	"github.com/sarchlab/axiconnect/demux"
	"github.com/sarchlab/axiconnect/fifo"
	"github.com/sarchlab/axiconnect/internal/bustest"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/timing"
	"github.com/sarchlab/axiconnect/throttle"
)

// Builder can build platforms.
type Builder struct {
	config  config.Config
	addrMap *demux.AddressMap
	engine  timing.Engine
}

// MakeBuilder creates a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{config: config.Default()}
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(c config.Config) Builder {
	b.config = c
	return b
}

// WithAddressMap places an address decoder in front of the targets. Each
// region gets its own target.
func (b Builder) WithAddressMap(m *demux.AddressMap) Builder {
	b.addrMap = m
	return b
}

// WithEngine sets the engine that drives the clock domain.
func (b Builder) WithEngine(e timing.Engine) Builder {
	b.engine = e
	return b
}

// Build creates the platform. It panics on an invalid configuration.
func (b Builder) Build(name string) *Platform {
	if err := b.config.Validate(); err != nil {
		panic(err)
	}

	c := b.config

	db := hardware.MakeDomainBuilder().
		WithFreq(timing.Freq(c.FreqMHz) * timing.MHz)
	if b.engine != nil {
		db = db.WithEngine(b.engine)
	}

	p := &Platform{
		Domain: db.Build(name),
		Config: c,
		Memory: bustest.NewMemory(),
	}

	b.buildReadPath(p)
	b.buildWritePath(p)

	p.Checker = bustest.NewChecker(p.Domain,
		p.ReadXbar.Inputs, p.ReadXbar.Out,
		p.WriteXbar.Inputs, p.WriteXbar.Out)

	return p
}

func (b Builder) throttleBuilder(
	d *hardware.Domain,
	buffer throttle.LevelReporter,
) throttle.Builder {
	return throttle.MakeBuilder().
		WithDomain(d).
		WithLevelReporter(buffer).
		WithLevelLatency(b.config.LevelLatency).
		WithThroughputMode(b.config.ThroughputMode).
		WithMaxBurstBeats(b.config.MaxBurstBeats)
}

// buildReadPath places a throttle and an R FIFO in front of every crossbar
// input. The throttle reserves FIFO space for a burst before the arbiter sees
// its address.
func (b Builder) buildReadPath(p *Platform) {
	c := b.config
	d := p.Domain

	xbarInputs := make([]*axi.ReadPort, c.NumPorts)
	initiatorPorts := make([]*axi.ReadPort, c.NumPorts)

	for i := 0; i < c.NumPorts; i++ {
		fifoName := targetName("ReadFifo", i)
		throttleName := targetName("ReadThrottle", i)

		buf := fifo.MakeBuilder[axi.ReadData]().
			WithDomain(d).
			WithDepth(c.BufferDepth).
			WithLevelLatency(c.LevelLatency).
			Build(fifoName)

		t := b.throttleBuilder(d, buf).BuildRead(throttleName,
			&axi.ReadPort{
				AR: axi.NewChannel[axi.Addr](d, throttleName+".In.AR"),
				R:  buf.In,
			}, nil)

		p.ReadFifos = append(p.ReadFifos, buf)
		p.ReadThrottles = append(p.ReadThrottles, t)
		xbarInputs[i] = t.Out
		initiatorPorts[i] = &axi.ReadPort{AR: t.In.AR, R: buf.Out}
	}

	p.ReadXbar = crossbar.MakeReadBuilder().
		WithDomain(d).
		WithPolicy(c.Policy).
		WithInputs(xbarInputs).
		Build("ReadXbar")

	targetPorts := []*axi.ReadPort{p.ReadXbar.Out}
	if b.addrMap != nil {
		p.ReadDemux = demux.MakeBuilder().
			WithDomain(d).
			WithAddressMap(b.addrMap).
			BuildRead("ReadDemux", p.ReadXbar.Out, nil)
		targetPorts = p.ReadDemux.Outs
	}

	for i, port := range targetPorts {
		p.ReadTargets = append(p.ReadTargets, bustest.NewReadTarget(d,
			targetName("ReadTarget", i), port, p.Memory,
			c.Seed+int64(100+i), c.ReadyChance))
	}

	for i, port := range initiatorPorts {
		p.ReadInitiators = append(p.ReadInitiators,
			bustest.NewReadInitiator(d, targetName("ReadInitiator", i), port,
				c.Seed+int64(i), c.ReadyChance))
	}
}

// buildWritePath places a throttle and a W FIFO in front of every crossbar
// input. W beats may enter the FIFO before their address is admitted.
func (b Builder) buildWritePath(p *Platform) {
	c := b.config
	d := p.Domain

	xbarInputs := make([]*axi.WritePort, c.NumPorts)

	for i := 0; i < c.NumPorts; i++ {
		fifoName := targetName("WriteFifo", i)
		throttleName := targetName("WriteThrottle", i)

		buf := fifo.MakeBuilder[axi.WriteData]().
			WithDomain(d).
			WithDepth(c.BufferDepth).
			WithLevelLatency(c.LevelLatency).
			Build(fifoName)

		t := b.throttleBuilder(d, buf).BuildWrite(throttleName, nil,
			&axi.WritePort{
				AW: axi.NewChannel[axi.Addr](d, throttleName+".Out.AW"),
				W:  buf.In,
				B:  axi.NewChannel[axi.WriteResp](d, throttleName+".Out.B"),
			})

		p.WriteFifos = append(p.WriteFifos, buf)
		p.WriteThrottles = append(p.WriteThrottles, t)
		xbarInputs[i] = &axi.WritePort{AW: t.Out.AW, W: buf.Out, B: t.Out.B}
	}

	p.WriteXbar = crossbar.MakeWriteBuilder().
		WithDomain(d).
		WithPolicy(c.Policy).
		WithMode(c.WriteMode).
		WithMaxOutstanding(c.MaxOutstanding).
		WithInputs(xbarInputs).
		Build("WriteXbar")

	targetPorts := []*axi.WritePort{p.WriteXbar.Out}
	if b.addrMap != nil {
		p.WriteDemux = demux.MakeBuilder().
			WithDomain(d).
			WithAddressMap(b.addrMap).
			BuildWrite("WriteDemux", p.WriteXbar.Out, nil)
		targetPorts = p.WriteDemux.Outs
	}

	for i, port := range targetPorts {
		p.WriteTargets = append(p.WriteTargets, bustest.NewWriteTarget(d,
			targetName("WriteTarget", i), port, p.Memory,
			c.Seed+int64(200+i), c.ReadyChance))
	}

	for i, t := range p.WriteThrottles {
		initiator := bustest.NewWriteInitiator(d,
			targetName("WriteInitiator", i), t.In,
			c.Seed+int64(300+i), c.ReadyChance)
		if c.DataFirst {
			initiator.SendDataFirst()
		}

		p.WriteInitiators = append(p.WriteInitiators, initiator)
	}
}
