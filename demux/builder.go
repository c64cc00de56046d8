package demux

import (
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

// Builder can build read and write demuxes.
type Builder struct {
	domain  *hardware.Domain
	addrMap *AddressMap
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithDomain sets the domain that the demux belongs to.
func (b Builder) WithDomain(d *hardware.Domain) Builder {
	b.domain = d
	return b
}

// WithAddressMap sets the regions. Target i serves region i.
func (b Builder) WithAddressMap(m *AddressMap) Builder {
	b.addrMap = m
	return b
}

func (b Builder) mustBeValid(numOuts int) {
	if b.domain == nil {
		panic("domain is not given")
	}

	if b.addrMap == nil || b.addrMap.Len() == 0 {
		panic("address map is empty")
	}

	if numOuts != 0 && numOuts != b.addrMap.Len() {
		log.Panicf("%d target ports given for %d regions",
			numOuts, b.addrMap.Len())
	}
}

func (b Builder) makeBase(name string) demuxBase {
	return demuxBase{
		ComponentBase: hardware.NewComponentBase(name),
		addrMap:       b.addrMap,
	}
}

// BuildRead creates a ReadDemux and registers it to the domain. Ports that
// are nil are created. The target ports are named after the regions.
func (b Builder) BuildRead(
	name string,
	in *axi.ReadPort,
	outs []*axi.ReadPort,
) *ReadDemux {
	b.mustBeValid(len(outs))

	d := &ReadDemux{
		demuxBase: b.makeBase(name),
		In:        in,
		Outs:      outs,
	}
	d.owner = d

	if d.In == nil {
		d.In = axi.NewReadPort(b.domain, name+".In")
	}

	if d.Outs == nil {
		for i := 0; i < b.addrMap.Len(); i++ {
			d.Outs = append(d.Outs, axi.NewReadPort(b.domain,
				name+"."+b.addrMap.Region(i).Name))
		}
	}

	for _, p := range d.Outs {
		d.arOuts = append(d.arOuts, p.AR)
		d.rOuts = append(d.rOuts, p.R)
	}

	b.domain.Register(d)

	return d
}

// BuildWrite creates a WriteDemux and registers it to the domain. Ports that
// are nil are created. The target ports are named after the regions.
func (b Builder) BuildWrite(
	name string,
	in *axi.WritePort,
	outs []*axi.WritePort,
) *WriteDemux {
	b.mustBeValid(len(outs))

	d := &WriteDemux{
		demuxBase: b.makeBase(name),
		In:        in,
		Outs:      outs,
	}
	d.owner = d

	if d.In == nil {
		d.In = axi.NewWritePort(b.domain, name+".In")
	}

	if d.Outs == nil {
		for i := 0; i < b.addrMap.Len(); i++ {
			d.Outs = append(d.Outs, axi.NewWritePort(b.domain,
				name+"."+b.addrMap.Region(i).Name))
		}
	}

	for _, p := range d.Outs {
		d.awOuts = append(d.awOuts, p.AW)
		d.wOuts = append(d.wOuts, p.W)
		d.bOuts = append(d.bOuts, p.B)
	}

	b.domain.Register(d)

	return d
}
