package bustest

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

// ReadTarget serves read bursts from a Memory, one beat per cycle when it
// chooses to be valid.
type ReadTarget struct {
	*hardware.ComponentBase

	Port *axi.ReadPort

	mem         *Memory
	capacity    int
	rng         *rand.Rand
	validChance float64
	rValid      bool

	queue []axi.Addr
	beat  int

	arFire    bool
	arPayload axi.Addr
	rFire     bool
}

// NewReadTarget creates a read target and registers it to the domain.
// validChance is the probability that R is offered in a cycle.
func NewReadTarget(
	d *hardware.Domain,
	name string,
	port *axi.ReadPort,
	mem *Memory,
	seed int64,
	validChance float64,
) *ReadTarget {
	if port == nil {
		port = axi.NewReadPort(d, name+".Port")
	}

	t := &ReadTarget{
		ComponentBase: hardware.NewComponentBase(name),
		Port:          port,
		mem:           mem,
		capacity:      4,
		rng:           rand.New(rand.NewSource(seed)),
		validChance:   validChance,
		rValid:        validChance >= 1,
	}
	d.Register(t)

	return t
}

// Pending returns the number of accepted requests not yet served.
func (t *ReadTarget) Pending() int {
	return len(t.queue)
}

// Evaluate drives AR ready and R.
func (t *ReadTarget) Evaluate() {
	t.Port.AR.Ready.Set(len(t.queue) < t.capacity)

	if len(t.queue) > 0 && t.rValid {
		req := t.queue[0]
		addr := req.BeatAddr(t.beat)
		t.Port.R.Drive(axi.ReadData{
			ID:   req.ID,
			Data: t.mem.Read(addr),
			Resp: t.mem.Resp(addr),
			Last: t.beat == req.Beats()-1,
		})
	} else {
		t.Port.R.Idle()
	}

	t.arFire = t.Port.AR.Fire()
	t.arPayload = t.Port.AR.Payload.Get()
	t.rFire = t.Port.R.Fire()
}

// Tick advances the current burst.
func (t *ReadTarget) Tick() {
	if t.rFire {
		t.beat++

		if t.beat == t.queue[0].Beats() {
			t.queue = t.queue[1:]
			t.beat = 0
		}
	}

	if t.arFire {
		t.queue = append(t.queue, t.arPayload)
	}

	t.rValid = t.rng.Float64() < t.validChance
	t.arFire = false
	t.rFire = false
}

// WriteTarget stores write bursts into a Memory. It accepts data only for an
// address it has already accepted.
type WriteTarget struct {
	*hardware.ComponentBase

	Port *axi.WritePort

	domain      *hardware.Domain
	mem         *Memory
	capacity    int
	rng         *rand.Rand
	readyChance float64
	wReady      bool

	queue  []axi.Addr
	beat   int
	resp   axi.Resp
	bQueue []axi.WriteResp
	errors []error

	awFire    bool
	awPayload axi.Addr
	wFire     bool
	wPayload  axi.WriteData
	bFire     bool
}

// NewWriteTarget creates a write target and registers it to the domain.
// readyChance is the probability that W is ready in a cycle.
func NewWriteTarget(
	d *hardware.Domain,
	name string,
	port *axi.WritePort,
	mem *Memory,
	seed int64,
	readyChance float64,
) *WriteTarget {
	if port == nil {
		port = axi.NewWritePort(d, name+".Port")
	}

	t := &WriteTarget{
		ComponentBase: hardware.NewComponentBase(name),
		Port:          port,
		domain:        d,
		mem:           mem,
		capacity:      4,
		rng:           rand.New(rand.NewSource(seed)),
		readyChance:   readyChance,
		wReady:        readyChance >= 1,
		resp:          axi.ExclusiveOK,
	}
	d.Register(t)

	return t
}

// Errors returns the protocol errors seen by the target.
func (t *WriteTarget) Errors() []error {
	return t.errors
}

// Evaluate drives AW ready, W ready and B.
func (t *WriteTarget) Evaluate() {
	t.Port.AW.Ready.Set(len(t.queue) < t.capacity)
	t.Port.W.Ready.Set(len(t.queue) > 0 && t.wReady)

	if len(t.bQueue) > 0 {
		t.Port.B.Drive(t.bQueue[0])
	} else {
		t.Port.B.Idle()
	}

	t.awFire = t.Port.AW.Fire()
	t.awPayload = t.Port.AW.Payload.Get()
	t.wFire = t.Port.W.Fire()
	t.wPayload = t.Port.W.Payload.Get()
	t.bFire = t.Port.B.Fire()
}

// Tick stores the beat of this cycle.
func (t *WriteTarget) Tick() {
	if t.bFire {
		t.bQueue = t.bQueue[1:]
	}

	if t.wFire {
		t.storeBeat(t.wPayload)
	}

	if t.awFire {
		t.queue = append(t.queue, t.awPayload)
	}

	t.wReady = t.rng.Float64() < t.readyChance
	t.awFire = false
	t.wFire = false
	t.bFire = false
}

func (t *WriteTarget) storeBeat(w axi.WriteData) {
	req := t.queue[0]
	addr := req.BeatAddr(t.beat)

	t.mem.Write(addr, w.Data, w.Strb)
	t.resp = axi.CombineResp(t.resp, t.mem.Resp(addr))
	t.beat++

	last := t.beat == req.Beats()
	if last != w.Last {
		t.errors = append(t.errors, fmt.Errorf(
			"%s: cycle %d: id %d beat %d has last=%v",
			t.Name(), t.domain.Cycle(), req.ID, t.beat-1, w.Last))
	}

	if !last {
		return
	}

	t.bQueue = append(t.bQueue, axi.WriteResp{ID: req.ID, Resp: t.resp})
	t.queue = t.queue[1:]
	t.beat = 0
	t.resp = axi.ExclusiveOK
}
