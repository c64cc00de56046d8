package throttle

import (
	"log"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/pipeline"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
)

// HookPosAdmit is triggered when an address request passes the throttle.
// The item is the axi.Addr.
var HookPosAdmit = &hooking.HookPos{Name: "Admit"}

// HookPosBlock is triggered on the first cycle an address request is held
// back. A different request held back on the next cycle triggers it again.
// The item is the axi.Addr.
var HookPosBlock = &hooking.HookPos{Name: "Block"}

// LevelReporter is the buffer that a throttle protects.
type LevelReporter interface {
	// Level returns the number of beats in the buffer.
	Level() int

	// Depth returns the capacity of the buffer.
	Depth() int
}

type levelLatencyReporter interface {
	LevelLatency() int
}

// BlockInfo is the detail of HookPosBlock.
type BlockInfo struct {
	Beats  int
	Free   int
	Credit int
	Level  int
}

// gate admits requests from an address channel into a register slice. It is
// the part shared by the read and the write throttles.
type gate struct {
	comp  *hardware.ComponentBase
	owner hooking.Hookable

	in      *axi.Channel[axi.Addr]
	stage   *pipeline.Stage[axi.Addr]
	buffer  LevelReporter
	counter *CreditCounter

	maxBurst     int
	levelLatency int

	admitted     bool
	blocked      bool
	wasBlocked   bool
	request      axi.Addr
	blockedReq   axi.Addr
	drainFire    bool
	prevDrain    bool
	blockDetails BlockInfo
}

func (g *gate) evaluate(drainFire bool) {
	valid := g.in.Valid.Get()
	req := g.in.Payload.Get()

	if valid && req.Beats() > g.maxBurst {
		log.Panicf("%s: burst of %d beats exceeds the maximum of %d",
			g.comp.Name(), req.Beats(), g.maxBurst)
	}

	depth := g.buffer.Depth()
	level := g.buffer.Level()
	block := valid && !g.counter.Admits(req.Beats(), depth, level)

	g.stage.In.Valid.Set(valid && !block)
	g.stage.In.Payload.Set(req)
	g.in.Ready.Set(g.stage.In.Ready.Get() && !block)

	g.admitted = g.in.Fire()
	g.blocked = block
	g.request = req
	g.drainFire = drainFire
	g.blockDetails = BlockInfo{
		Beats:  req.Beats(),
		Free:   g.counter.Free(depth, level),
		Credit: g.counter.Value(),
		Level:  level,
	}
}

func (g *gate) tick() {
	reserved := 0
	if g.admitted {
		reserved = g.request.Beats()
	}

	drained := g.drainFire
	if g.levelLatency == 1 {
		drained = g.prevDrain
	}

	g.prevDrain = g.drainFire

	g.counter.Update(reserved, boolToInt(drained))

	if g.blocked && (!g.wasBlocked || g.request != g.blockedReq) {
		g.comp.InvokeHook(hooking.HookCtx{
			Domain: g.owner,
			Pos:    HookPosBlock,
			Item:   g.request,
			Detail: g.blockDetails,
		})
	}

	if g.admitted {
		g.comp.InvokeHook(hooking.HookCtx{
			Domain: g.owner,
			Pos:    HookPosAdmit,
			Item:   g.request,
		})
	}

	g.wasBlocked = g.blocked
	g.blockedReq = g.request
	g.admitted = false
	g.drainFire = false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// ReadThrottle gates AR so that the read data buffer can absorb every
// admitted burst. R beats pass from Out to In, and In.R feeds the buffer.
type ReadThrottle struct {
	*hardware.ComponentBase
	gate

	In  *axi.ReadPort
	Out *axi.ReadPort
}

// Credit returns the credit counter.
func (t *ReadThrottle) Credit() *CreditCounter {
	return t.counter
}

// AddrStage returns the register slice after the gate.
func (t *ReadThrottle) AddrStage() *pipeline.Stage[axi.Addr] {
	return t.stage
}

// Evaluate computes the admission decision and forwards R.
func (t *ReadThrottle) Evaluate() {
	axi.Forward(t.Out.R, t.In.R)
	t.evaluate(t.In.R.Fire())
}

// Tick updates the credit counter.
func (t *ReadThrottle) Tick() {
	t.tick()
}

// WriteThrottle gates AW so that the write data buffer can absorb every
// admitted burst. W beats pass from In to Out, and Out.W feeds the buffer.
type WriteThrottle struct {
	*hardware.ComponentBase
	gate

	In  *axi.WritePort
	Out *axi.WritePort
}

// Credit returns the credit counter.
func (t *WriteThrottle) Credit() *CreditCounter {
	return t.counter
}

// AddrStage returns the register slice after the gate.
func (t *WriteThrottle) AddrStage() *pipeline.Stage[axi.Addr] {
	return t.stage
}

// Evaluate computes the admission decision and forwards W and B.
func (t *WriteThrottle) Evaluate() {
	axi.Forward(t.In.W, t.Out.W)
	axi.Forward(t.Out.B, t.In.B)
	t.evaluate(t.Out.W.Fire())
}

// Tick updates the credit counter.
func (t *WriteThrottle) Tick() {
	t.tick()
}
