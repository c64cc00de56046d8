// Package axi defines the channels and payloads of an AXI-style memory mapped
// bus. Every channel is a valid/ready handshake and a transfer happens on a
// cycle where both valid and ready are high.
package axi

import "fmt"

// BurstMode defines how the address changes between beats of a burst.
type BurstMode uint8

// Burst modes.
const (
	Fixed BurstMode = iota
	Incr
	Wrap
)

func (m BurstMode) String() string {
	switch m {
	case Fixed:
		return "FIXED"
	case Incr:
		return "INCR"
	case Wrap:
		return "WRAP"
	default:
		return fmt.Sprintf("BurstMode(%d)", uint8(m))
	}
}

// Addr is the payload of the AR and AW channels.
type Addr struct {
	ID    uint32
	Addr  uint64
	Len   uint8 // number of beats minus one
	Size  uint8 // log2 of bytes per beat
	Burst BurstMode
}

// Beats returns the number of beats in the burst.
func (a Addr) Beats() int {
	return int(a.Len) + 1
}

// BytesPerBeat returns the number of bytes transferred by each beat.
func (a Addr) BytesPerBeat() int {
	return 1 << a.Size
}

// BeatAddr returns the address of the i-th beat.
func (a Addr) BeatAddr(i int) uint64 {
	bytes := uint64(a.BytesPerBeat())

	switch a.Burst {
	case Fixed:
		return a.Addr
	case Wrap:
		span := bytes * uint64(a.Beats())
		base := a.Addr &^ (span - 1)

		return base + (a.Addr+uint64(i)*bytes-base)%span
	default:
		return a.Addr + uint64(i)*bytes
	}
}

func (a Addr) String() string {
	return fmt.Sprintf("id=%d addr=%#x beats=%d size=%d %s",
		a.ID, a.Addr, a.Beats(), a.BytesPerBeat(), a.Burst)
}

// WriteData is the payload of the W channel.
type WriteData struct {
	Data uint64
	Strb uint8
	Last bool
}

// ReadData is the payload of the R channel.
type ReadData struct {
	ID   uint32
	Data uint64
	Resp Resp
	Last bool
}

// WriteResp is the payload of the B channel.
type WriteResp struct {
	ID   uint32
	Resp Resp
}
