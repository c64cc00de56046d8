package axi

import (
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/naming"
)

// A ReadPort bundles the read address and read data channels.
type ReadPort struct {
	AR *Channel[Addr]
	R  *Channel[ReadData]
}

// NewReadPort creates a read port named name in the domain.
func NewReadPort(d *hardware.Domain, name string) *ReadPort {
	return &ReadPort{
		AR: NewChannel[Addr](d, name+".AR"),
		R:  NewChannel[ReadData](d, name+".R"),
	}
}

// A WritePort bundles the write address, write data and write response
// channels.
type WritePort struct {
	AW *Channel[Addr]
	W  *Channel[WriteData]
	B  *Channel[WriteResp]
}

// NewWritePort creates a write port named name in the domain.
func NewWritePort(d *hardware.Domain, name string) *WritePort {
	return &WritePort{
		AW: NewChannel[Addr](d, name+".AW"),
		W:  NewChannel[WriteData](d, name+".W"),
		B:  NewChannel[WriteResp](d, name+".B"),
	}
}

// NewReadPorts creates n read ports named name[0] to name[n-1].
func NewReadPorts(d *hardware.Domain, name string, n int) []*ReadPort {
	ports := make([]*ReadPort, n)
	for i := range ports {
		ports[i] = NewReadPort(d, naming.BuildNameWithIndex("", name, i))
	}

	return ports
}

// NewWritePorts creates n write ports named name[0] to name[n-1].
func NewWritePorts(d *hardware.Domain, name string, n int) []*WritePort {
	ports := make([]*WritePort, n)
	for i := range ports {
		ports[i] = NewWritePort(d, naming.BuildNameWithIndex("", name, i))
	}

	return ports
}
