// Package throttle holds back address requests until a downstream buffer is
// guaranteed to absorb the whole burst.
package throttle

import "log"

// A CreditCounter counts payload beats that were reserved by admitted
// address requests but have not yet entered the buffer.
//
// An unsigned counter never goes below zero. A signed counter goes negative
// when payload enters the buffer before the address that claims it. Both are
// bounded by the buffer depth.
type CreditCounter struct {
	signed bool
	limit  int
	value  int
}

// NewUnsignedCounter creates a counter bounded by [0, limit].
func NewUnsignedCounter(limit int) *CreditCounter {
	return &CreditCounter{limit: limit}
}

// NewSignedCounter creates a counter bounded by [-limit, limit].
func NewSignedCounter(limit int) *CreditCounter {
	return &CreditCounter{signed: true, limit: limit}
}

// Value returns the number of outstanding beats.
func (c *CreditCounter) Value() int {
	return c.value
}

// Signed tells if the counter may go negative.
func (c *CreditCounter) Signed() bool {
	return c.signed
}

// Limit returns the bound of the counter.
func (c *CreditCounter) Limit() int {
	return c.limit
}

// Free returns the buffer space not claimed by buffered or reserved beats.
func (c *CreditCounter) Free(depth, level int) int {
	return depth - level - c.value
}

// Admits tells if a burst of the given length fits in the free space.
func (c *CreditCounter) Admits(beats, depth, level int) bool {
	return beats <= c.Free(depth, level)
}

// Reserve adds the beats of an admitted burst.
func (c *CreditCounter) Reserve(beats int) {
	c.Update(beats, 0)
}

// Drain removes beats that entered the buffer.
func (c *CreditCounter) Drain(n int) {
	c.Update(0, n)
}

// Update applies one cycle worth of reservations and drains.
func (c *CreditCounter) Update(reserved, drained int) {
	next := c.value + reserved - drained

	if !c.signed && next < 0 {
		log.Panicf("credit counter underflow: %d + %d - %d",
			c.value, reserved, drained)
	}

	if next > c.limit || next < -c.limit {
		log.Panicf("credit counter %d out of bound %d", next, c.limit)
	}

	c.value = next
}
