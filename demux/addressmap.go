// Package demux routes one initiator port to several targets by address.
// Requests to unmapped addresses are completed with DECODE_ERROR.
package demux

import (
	"fmt"
	"sort"
)

// A Region is a named address range [Base, Base+Size).
type Region struct {
	Name string
	Base uint64
	Size uint64
}

// Contains tells if addr falls in the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Base && addr-r.Base < r.Size
}

// AddressMap maps addresses to target indices. The index of a region is its
// insertion order.
type AddressMap struct {
	regions []Region
}

// NewAddressMap creates an empty map.
func NewAddressMap() *AddressMap {
	return &AddressMap{}
}

// Add appends a region. It fails if the region is empty or overlaps an
// existing one.
func (m *AddressMap) Add(name string, base, size uint64) error {
	if size == 0 {
		return fmt.Errorf("region %s is empty", name)
	}

	if base+size < base {
		return fmt.Errorf("region %s wraps around the address space", name)
	}

	for _, r := range m.regions {
		if base < r.Base+r.Size && r.Base < base+size {
			return fmt.Errorf("region %s [%#x, %#x) overlaps %s [%#x, %#x)",
				name, base, base+size, r.Name, r.Base, r.Base+r.Size)
		}
	}

	m.regions = append(m.regions, Region{Name: name, Base: base, Size: size})

	return nil
}

// MustAdd is Add that panics on error.
func (m *AddressMap) MustAdd(name string, base, size uint64) *AddressMap {
	if err := m.Add(name, base, size); err != nil {
		panic(err)
	}

	return m
}

// Decode returns the index of the region that contains addr.
func (m *AddressMap) Decode(addr uint64) (int, bool) {
	for i, r := range m.regions {
		if r.Contains(addr) {
			return i, true
		}
	}

	return 0, false
}

// Len returns the number of regions.
func (m *AddressMap) Len() int {
	return len(m.regions)
}

// Region returns the i-th region.
func (m *AddressMap) Region(i int) Region {
	return m.regions[i]
}

// Sorted returns the regions ordered by base address.
func (m *AddressMap) Sorted() []Region {
	sorted := make([]Region, len(m.regions))
	copy(sorted, m.regions)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Base < sorted[j].Base
	})

	return sorted
}
