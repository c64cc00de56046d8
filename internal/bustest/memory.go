// Package bustest provides bus functional models and a protocol checker for
// testing interconnect components.
package bustest

import "github.com/sarchlab/axiconnect/axi"

type addrRange struct {
	lo, hi uint64
}

// Memory is a sparse word-addressed memory shared by targets.
type Memory struct {
	words  map[uint64]uint64
	errors []addrRange
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint64]uint64)}
}

// FailRange makes accesses in [lo, hi) answer TARGET_ERROR.
func (m *Memory) FailRange(lo, hi uint64) {
	m.errors = append(m.errors, addrRange{lo: lo, hi: hi})
}

// Resp returns the response of an access to addr.
func (m *Memory) Resp(addr uint64) axi.Resp {
	for _, r := range m.errors {
		if addr >= r.lo && addr < r.hi {
			return axi.TargetError
		}
	}

	return axi.OK
}

// Read returns the word at addr.
func (m *Memory) Read(addr uint64) uint64 {
	return m.words[addr]
}

// Write updates the bytes of the word at addr selected by strb.
func (m *Memory) Write(addr, data uint64, strb uint8) {
	old := m.words[addr]

	for i := 0; i < 8; i++ {
		if strb&(1<<i) == 0 {
			continue
		}

		mask := uint64(0xff) << (8 * i)
		old = old&^mask | data&mask
	}

	m.words[addr] = old
}
