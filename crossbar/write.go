package crossbar

import (
	"fmt"
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
)

// WriteMode selects the locking discipline of a write crossbar.
type WriteMode int

const (
	// LockUntilResponse holds the lock through address, data and response
	// of a single transaction.
	LockUntilResponse WriteMode = iota

	// OutstandingCount lets the locked port issue further addresses while
	// earlier responses are pending. Data still follows address order.
	OutstandingCount
)

func (m WriteMode) String() string {
	switch m {
	case LockUntilResponse:
		return "lock"
	case OutstandingCount:
		return "outstanding"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// ParseWriteMode converts "lock" or "outstanding" to a WriteMode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch s {
	case "lock":
		return LockUntilResponse, nil
	case "outstanding":
		return OutstandingCount, nil
	default:
		return 0, fmt.Errorf("unknown write mode %q", s)
	}
}

// WriteCrossbar multiplexes N write ports onto one.
type WriteCrossbar struct {
	*hardware.ComponentBase

	Inputs []*axi.WritePort
	Out    *axi.WritePort

	awIns []*axi.Channel[axi.Addr]
	wIns  []*axi.Channel[axi.WriteData]
	bIns  []*axi.Channel[axi.WriteResp]

	arbiter        *Arbiter
	mode           WriteMode
	maxOutstanding int
	lite           bool
	state          State
	selected       int

	grants      int
	outstanding int
	wBursts     int

	winner     int
	found      bool
	winnerReq  axi.Addr
	awFire     bool
	awValidSel bool
	wLastFire  bool
	bFire      bool
}

// State returns the lock state.
func (c *WriteCrossbar) State() State {
	return c.state
}

// Selected returns the port that holds the lock, if any.
func (c *WriteCrossbar) Selected() (int, bool) {
	return c.selected, c.state != Idle
}

// Outstanding returns the number of addresses granted in the current lock
// whose response has not been seen.
func (c *WriteCrossbar) Outstanding() int {
	return c.outstanding
}

// Arbiter returns the arbiter.
func (c *WriteCrossbar) Arbiter() *Arbiter {
	return c.arbiter
}

// Evaluate connects the selected port to the shared port.
func (c *WriteCrossbar) Evaluate() {
	awSel, wSel, bSel := -1, -1, -1

	switch c.state {
	case Idle:
		c.winner, c.found = c.arbiter.Arbitrate(requests(c.awIns))
		if c.found {
			c.winnerReq = c.awIns[c.winner].Payload.Get()
		}
	case AddressGranted:
		awSel = c.selected
	case PayloadInFlight:
		wSel = c.selected
	case ResponsePending:
		bSel = c.selected
	case Locked:
		awSel, wSel, bSel = c.lockedRoutes()
	}

	routeDown(c.awIns, c.Out.AW, awSel)
	routeDown(c.wIns, c.Out.W, wSel)
	routeUp(c.Out.B, c.bIns, bSel)

	c.awFire = c.Out.AW.Fire()
	c.wLastFire = c.Out.W.Fire() && (c.lite || c.Out.W.Payload.Get().Last)
	c.bFire = c.Out.B.Fire()

	if c.state != Idle {
		c.awValidSel = c.awIns[c.selected].Valid.Get()
	}
}

func (c *WriteCrossbar) lockedRoutes() (awSel, wSel, bSel int) {
	awSel, wSel, bSel = -1, -1, -1

	if c.grants < c.maxOutstanding {
		awSel = c.selected
	}

	if c.wBursts > 0 {
		wSel = c.selected
	}

	if c.outstanding > c.wBursts {
		bSel = c.selected
	}

	return awSel, wSel, bSel
}

// Tick moves the lock state machine and the counters.
func (c *WriteCrossbar) Tick() {
	next := c.nextState()

	if c.state == Idle {
		c.arbiter.Advance()

		if c.found {
			c.selected = c.winner
			c.InvokeHook(hooking.HookCtx{
				Domain: c,
				Pos:    HookPosGrant,
				Item:   GrantInfo{Port: c.winner, Addr: c.winnerReq},
			})
		}
	}

	if c.state == Locked {
		c.updateCounters()
	}

	if next == Idle && c.state != Idle {
		transactions := 1
		if c.state == Locked {
			transactions = c.grants
		}

		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosRelease,
			Item:   ReleaseInfo{Port: c.selected, Transactions: transactions},
		})
	}

	if next == Locked && c.state == Idle {
		c.grants = 0
		c.outstanding = 0
		c.wBursts = 0
	}

	c.state = next
	c.found = false
	c.awFire = false
	c.wLastFire = false
	c.bFire = false
	c.awValidSel = false
}

func (c *WriteCrossbar) updateCounters() {
	if c.awFire {
		c.grants++
		c.outstanding++
		c.wBursts++
	}

	if c.wLastFire {
		c.wBursts--
	}

	if c.bFire {
		c.outstanding--
	}

	if c.outstanding < 0 || c.wBursts < 0 || c.wBursts > c.outstanding {
		log.Panicf("%s: inconsistent counters, outstanding %d, bursts %d",
			c.Name(), c.outstanding, c.wBursts)
	}
}

func (c *WriteCrossbar) nextState() State {
	switch c.state {
	case Idle:
		if !c.found {
			return Idle
		}

		if c.mode == OutstandingCount {
			return Locked
		}

		return AddressGranted
	case AddressGranted:
		if c.awFire {
			return PayloadInFlight
		}
	case PayloadInFlight:
		if c.wLastFire {
			return ResponsePending
		}
	case ResponsePending:
		if c.bFire {
			return Idle
		}
	case Locked:
		return c.nextLockedState()
	}

	return c.state
}

// nextLockedState releases the lock once nothing is outstanding and the
// locked port has no further address that could still be granted.
func (c *WriteCrossbar) nextLockedState() State {
	outstanding := c.outstanding
	grants := c.grants

	if c.awFire {
		outstanding++
		grants++
	}

	if c.bFire {
		outstanding--
	}

	if outstanding > 0 {
		return Locked
	}

	if c.awValidSel && !c.awFire && grants < c.maxOutstanding {
		return Locked
	}

	return Idle
}
