package bustest

import (
	"fmt"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
)

// A Checker observes the settled signals of a multiplexed interconnect every
// cycle and records protocol violations instead of panicking.
//
// It checks that at most one input port is connected to the shared port,
// that every burst on the shared port carries as many beats as its address
// announced, that no read data arrives before its address and that every
// write response matches an accepted address.
type Checker struct {
	domain *hardware.Domain
	errors []error

	readInputs  []*axi.ReadPort
	readOut     *axi.ReadPort
	writeInputs []*axi.WritePort
	writeOut    *axi.WritePort

	rRemaining map[uint32][]int

	awPending    []axi.Addr
	wBursts      []int
	wCount       int
	bOutstanding map[uint32]int
}

// NewChecker creates a checker and attaches it to the domain. The read or
// the write side may be left nil.
func NewChecker(
	d *hardware.Domain,
	readInputs []*axi.ReadPort,
	readOut *axi.ReadPort,
	writeInputs []*axi.WritePort,
	writeOut *axi.WritePort,
) *Checker {
	c := &Checker{
		domain:       d,
		readInputs:   readInputs,
		readOut:      readOut,
		writeInputs:  writeInputs,
		writeOut:     writeOut,
		rRemaining:   make(map[uint32][]int),
		bOutstanding: make(map[uint32]int),
	}
	d.AcceptHook(c)

	return c
}

// Errors returns all the violations found so far.
func (c *Checker) Errors() []error {
	return c.errors
}

// Func checks the settled signals.
func (c *Checker) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hardware.HookPosSettled {
		return
	}

	if c.readOut != nil {
		c.checkReadExclusion()
		c.checkReadBursts()
	}

	if c.writeOut != nil {
		c.checkWriteExclusion()
		c.checkWriteBursts()
	}
}

func (c *Checker) report(format string, args ...any) {
	prefix := fmt.Sprintf("cycle %d: ", c.domain.Cycle())
	c.errors = append(c.errors, fmt.Errorf(prefix+format, args...))
}

func (c *Checker) checkReadExclusion() {
	connected := []int{}

	for i, p := range c.readInputs {
		if p.AR.Ready.Get() || p.R.Valid.Get() {
			connected = append(connected, i)
		}
	}

	if len(connected) > 1 {
		c.report("read ports %v connected at the same time", connected)
	}
}

func (c *Checker) checkReadBursts() {
	out := c.readOut

	if out.R.Fire() {
		beat := out.R.Payload.Get()
		c.checkReadBeat(beat)
	}

	if out.AR.Fire() {
		req := out.AR.Payload.Get()
		c.rRemaining[req.ID] = append(c.rRemaining[req.ID], req.Beats())
	}
}

func (c *Checker) checkReadBeat(beat axi.ReadData) {
	queue := c.rRemaining[beat.ID]
	if len(queue) == 0 {
		c.report("read data for id %d before its address", beat.ID)
		return
	}

	queue[0]--

	switch {
	case beat.Last && queue[0] != 0:
		c.report("read burst id %d ended %d beats early", beat.ID, queue[0])
	case !beat.Last && queue[0] == 0:
		c.report("read burst id %d missing last", beat.ID)
	}

	if beat.Last || queue[0] == 0 {
		c.rRemaining[beat.ID] = queue[1:]
	}
}

func (c *Checker) checkWriteExclusion() {
	connected := []int{}

	for i, p := range c.writeInputs {
		if p.AW.Ready.Get() || p.W.Ready.Get() || p.B.Valid.Get() {
			connected = append(connected, i)
		}
	}

	if len(connected) > 1 {
		c.report("write ports %v connected at the same time", connected)
	}
}

func (c *Checker) checkWriteBursts() {
	out := c.writeOut

	if out.B.Fire() {
		b := out.B.Payload.Get()
		if c.bOutstanding[b.ID] == 0 {
			c.report("write response for unknown id %d", b.ID)
		} else {
			c.bOutstanding[b.ID]--
		}
	}

	if out.AW.Fire() {
		req := out.AW.Payload.Get()
		c.awPending = append(c.awPending, req)
		c.bOutstanding[req.ID]++
	}

	if out.W.Fire() {
		c.wCount++

		if out.W.Payload.Get().Last {
			c.wBursts = append(c.wBursts, c.wCount)
			c.wCount = 0
		}
	}

	for len(c.awPending) > 0 && len(c.wBursts) > 0 {
		req := c.awPending[0]
		if req.Beats() != c.wBursts[0] {
			c.report("write burst id %d carried %d beats, expected %d",
				req.ID, c.wBursts[0], req.Beats())
		}

		c.awPending = c.awPending[1:]
		c.wBursts = c.wBursts[1:]
	}
}
