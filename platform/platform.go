// Package platform assembles a complete interconnect from a configuration:
// initiators, crossbars, throttles, data FIFOs, an optional address decoder
// and memory targets.
package platform

import (
	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/config"
	"github.com/sarchlab/axiconnect/crossbar"
	"github.com/sarchlab/axiconnect/demux"
	"github.com/sarchlab/axiconnect/fifo"
	"github.com/sarchlab/axiconnect/internal/bustest"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/naming"
	"github.com/sarchlab/axiconnect/throttle"
)

// Platform is a read path and a write path that share a clock domain and a
// memory. Every initiator port has its own throttle and data FIFO in front
// of the crossbar.
//
// Read path:  initiator[i] -> ReadThrottle[i] -> ReadXbar -> [ReadDemux] ->
// targets, with the R data returning through ReadFifo[i].
//
// Write path: initiator[i] -> WriteThrottle[i] -> WriteXbar -> [WriteDemux]
// -> targets, with the W data passing through WriteFifo[i].
type Platform struct {
	Domain *hardware.Domain
	Config config.Config
	Memory *bustest.Memory

	ReadInitiators  []*bustest.ReadInitiator
	WriteInitiators []*bustest.WriteInitiator

	ReadThrottles  []*throttle.ReadThrottle
	WriteThrottles []*throttle.WriteThrottle

	ReadFifos  []*fifo.Stage[axi.ReadData]
	WriteFifos []*fifo.Stage[axi.WriteData]

	ReadXbar  *crossbar.ReadCrossbar
	WriteXbar *crossbar.WriteCrossbar

	ReadDemux  *demux.ReadDemux
	WriteDemux *demux.WriteDemux

	ReadTargets  []*bustest.ReadTarget
	WriteTargets []*bustest.WriteTarget

	Checker *bustest.Checker
}

// Done tells if every initiator has completed its traffic.
func (p *Platform) Done() bool {
	for _, i := range p.ReadInitiators {
		if !i.Done() {
			return false
		}
	}

	for _, i := range p.WriteInitiators {
		if !i.Done() {
			return false
		}
	}

	return true
}

// Run simulates until the traffic completes or the configured number of
// cycles has passed.
func (p *Platform) Run() error {
	return p.Domain.RunUntil(p.Done, p.Config.Cycles)
}

// Errors collects the protocol errors seen by the checker, the initiators
// and the targets.
func (p *Platform) Errors() []error {
	errs := append([]error(nil), p.Checker.Errors()...)

	for _, i := range p.ReadInitiators {
		errs = append(errs, i.Errors()...)
	}

	for _, i := range p.WriteInitiators {
		errs = append(errs, i.Errors()...)
	}

	for _, t := range p.WriteTargets {
		errs = append(errs, t.Errors()...)
	}

	return errs
}

// EnqueueTraffic gives every initiator the given number of read and write
// bursts of the configured length. Bursts rotate over the regions of the
// address map. Port i, burst n uses ID i<<16 | n.
func (p *Platform) EnqueueTraffic(reads, writes int) {
	for i, initiator := range p.ReadInitiators {
		for n := 0; n < reads; n++ {
			initiator.Enqueue(p.burstAddr(i, n, reads))
		}
	}

	for i, initiator := range p.WriteInitiators {
		for n := 0; n < writes; n++ {
			initiator.Enqueue(bustest.WriteBurst{
				Addr: p.burstAddr(i, n, writes),
			})
		}
	}
}

const bytesPerBeat = 8

func (p *Platform) burstAddr(port, n, perPort int) axi.Addr {
	beats := p.Config.BurstBeats
	offset := uint64(port*perPort+n) * uint64(beats*bytesPerBeat)
	base := uint64(0)

	if p.ReadDemux != nil {
		m := p.ReadDemux.AddressMap()
		region := m.Region(n % m.Len())
		base = region.Base
		offset %= region.Size
	}

	return axi.Addr{
		ID:    uint32(port)<<16 | uint32(n),
		Addr:  base + offset,
		Len:   uint8(beats - 1),
		Size:  3,
		Burst: axi.Incr,
	}
}

func targetName(prefix string, i int) string {
	return naming.BuildNameWithIndex("", prefix, i)
}
