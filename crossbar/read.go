package crossbar

import (
	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
)

// ReadCrossbar multiplexes N read ports onto one. A granted port keeps the
// shared port until its last R beat.
type ReadCrossbar struct {
	*hardware.ComponentBase

	Inputs []*axi.ReadPort
	Out    *axi.ReadPort

	arIns []*axi.Channel[axi.Addr]
	rIns  []*axi.Channel[axi.ReadData]

	arbiter  *Arbiter
	lite     bool
	state    State
	selected int

	winner    int
	found     bool
	winnerReq axi.Addr
	arFire    bool
	rLastFire bool
}

// State returns the lock state.
func (c *ReadCrossbar) State() State {
	return c.state
}

// Selected returns the port that holds the lock, if any.
func (c *ReadCrossbar) Selected() (int, bool) {
	return c.selected, c.state != Idle
}

// Arbiter returns the arbiter.
func (c *ReadCrossbar) Arbiter() *Arbiter {
	return c.arbiter
}

// Evaluate connects the selected port to the shared port.
func (c *ReadCrossbar) Evaluate() {
	arSel, rSel := -1, -1

	switch c.state {
	case Idle:
		c.winner, c.found = c.arbiter.Arbitrate(requests(c.arIns))
		if c.found {
			c.winnerReq = c.arIns[c.winner].Payload.Get()
		}
	case AddressGranted:
		arSel = c.selected
	case PayloadInFlight:
		rSel = c.selected
	}

	routeDown(c.arIns, c.Out.AR, arSel)
	routeUp(c.Out.R, c.rIns, rSel)

	c.arFire = c.Out.AR.Fire()
	c.rLastFire = c.Out.R.Fire() && (c.lite || c.Out.R.Payload.Get().Last)
}

// Tick moves the lock state machine.
func (c *ReadCrossbar) Tick() {
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

	if next == Idle && c.state != Idle {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosRelease,
			Item:   ReleaseInfo{Port: c.selected, Transactions: 1},
		})
	}

	c.state = next
	c.found = false
	c.arFire = false
	c.rLastFire = false
}

func (c *ReadCrossbar) nextState() State {
	switch c.state {
	case Idle:
		if c.found {
			return AddressGranted
		}
	case AddressGranted:
		if c.arFire {
			return PayloadInFlight
		}
	case PayloadInFlight:
		if c.rLastFire {
			return Idle
		}
	}

	return c.state
}
