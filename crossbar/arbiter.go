// Package crossbar multiplexes several initiator ports onto one shared port.
// A port that wins arbitration keeps the shared port until its whole
// transaction completes.
package crossbar

import (
	"fmt"
	"log"
)

// Policy selects how the arbiter picks among simultaneous requesters.
type Policy int

const (
	// FixedPriority grants the lowest requesting index. Higher indices can
	// starve under sustained load.
	FixedPriority Policy = iota

	// RoundRobin starts each scan at a rotating pointer. The pointer moves
	// by one after every scan, whether or not its position was granted.
	RoundRobin
)

func (p Policy) String() string {
	switch p {
	case FixedPriority:
		return "fixed"
	case RoundRobin:
		return "round-robin"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts "fixed" or "round-robin" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fixed":
		return FixedPriority, nil
	case "round-robin", "rr":
		return RoundRobin, nil
	default:
		return 0, fmt.Errorf("unknown arbitration policy %q", s)
	}
}

// An Arbiter picks one requester among n ports.
type Arbiter struct {
	policy  Policy
	n       int
	pointer int
}

// NewArbiter creates an arbiter for n ports.
func NewArbiter(policy Policy, n int) *Arbiter {
	if n <= 0 {
		log.Panicf("arbiter needs at least one port, got %d", n)
	}

	return &Arbiter{policy: policy, n: n}
}

// Policy returns the arbitration policy.
func (a *Arbiter) Policy() Policy {
	return a.policy
}

// Pointer returns the position where the next round-robin scan starts.
func (a *Arbiter) Pointer() int {
	return a.pointer
}

// Arbitrate returns the winning port without changing the arbiter state.
func (a *Arbiter) Arbitrate(requests []bool) (int, bool) {
	if len(requests) != a.n {
		log.Panicf("arbiter of %d ports got %d requests", a.n, len(requests))
	}

	start := 0
	if a.policy == RoundRobin {
		start = a.pointer
	}

	for i := 0; i < a.n; i++ {
		idx := (start + i) % a.n
		if requests[idx] {
			return idx, true
		}
	}

	return 0, false
}

// Advance completes one scan.
func (a *Arbiter) Advance() {
	if a.policy == RoundRobin {
		a.pointer = (a.pointer + 1) % a.n
	}
}
