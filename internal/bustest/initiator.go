package bustest

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

// ReadResult is a completed read burst.
type ReadResult struct {
	Addr  axi.Addr
	Data  []uint64
	Resp  axi.Resp
	Cycle uint64
}

// WriteResult is a completed write burst.
type WriteResult struct {
	ID    uint32
	Resp  axi.Resp
	Cycle uint64
}

// WriteBurst is a write request and its data.
type WriteBurst struct {
	Addr axi.Addr
	Data []uint64
}

// ReadInitiator issues queued read requests and collects the responses.
type ReadInitiator struct {
	*hardware.ComponentBase

	Port *axi.ReadPort

	domain      *hardware.Domain
	rng         *rand.Rand
	readyChance float64
	rReady      bool

	queue       []axi.Addr
	outstanding []*ReadResult
	results     []ReadResult
	errors      []error

	arFire   bool
	rFire    bool
	rPayload axi.ReadData
}

// NewReadInitiator creates a read initiator and registers it to the domain.
// readyChance is the probability that R is ready in a cycle.
func NewReadInitiator(
	d *hardware.Domain,
	name string,
	port *axi.ReadPort,
	seed int64,
	readyChance float64,
) *ReadInitiator {
	if port == nil {
		port = axi.NewReadPort(d, name+".Port")
	}

	i := &ReadInitiator{
		ComponentBase: hardware.NewComponentBase(name),
		Port:          port,
		domain:        d,
		rng:           rand.New(rand.NewSource(seed)),
		readyChance:   readyChance,
		rReady:        readyChance >= 1,
	}
	d.Register(i)

	return i
}

// Enqueue adds read requests.
func (i *ReadInitiator) Enqueue(reqs ...axi.Addr) {
	i.queue = append(i.queue, reqs...)
}

// Results returns the completed bursts in completion order.
func (i *ReadInitiator) Results() []ReadResult {
	return i.results
}

// Errors returns the protocol errors seen by the initiator.
func (i *ReadInitiator) Errors() []error {
	return i.errors
}

// Done tells if every request has completed.
func (i *ReadInitiator) Done() bool {
	return len(i.queue) == 0 && len(i.outstanding) == 0
}

// Evaluate drives AR and R ready.
func (i *ReadInitiator) Evaluate() {
	if len(i.queue) > 0 {
		i.Port.AR.Drive(i.queue[0])
	} else {
		i.Port.AR.Idle()
	}

	i.Port.R.Ready.Set(i.rReady)

	i.arFire = i.Port.AR.Fire()
	i.rFire = i.Port.R.Fire()
	i.rPayload = i.Port.R.Payload.Get()
}

// Tick records handshakes.
func (i *ReadInitiator) Tick() {
	if i.arFire {
		i.outstanding = append(i.outstanding, &ReadResult{
			Addr: i.queue[0],
			Resp: axi.ExclusiveOK,
		})
		i.queue = i.queue[1:]
	}

	if i.rFire {
		i.receiveBeat(i.rPayload)
	}

	i.rReady = i.rng.Float64() < i.readyChance
	i.arFire = false
	i.rFire = false
}

func (i *ReadInitiator) receiveBeat(beat axi.ReadData) {
	idx := -1

	for n, r := range i.outstanding {
		if r.Addr.ID == beat.ID {
			idx = n
			break
		}
	}

	if idx < 0 {
		i.errors = append(i.errors, fmt.Errorf(
			"%s: cycle %d: R beat with unknown id %d",
			i.Name(), i.domain.Cycle(), beat.ID))

		return
	}

	r := i.outstanding[idx]
	r.Data = append(r.Data, beat.Data)
	r.Resp = axi.CombineResp(r.Resp, beat.Resp)

	if len(r.Data) > r.Addr.Beats() {
		i.errors = append(i.errors, fmt.Errorf(
			"%s: cycle %d: id %d received %d beats, expected %d",
			i.Name(), i.domain.Cycle(), beat.ID, len(r.Data), r.Addr.Beats()))
	}

	if !beat.Last {
		return
	}

	if len(r.Data) != r.Addr.Beats() {
		i.errors = append(i.errors, fmt.Errorf(
			"%s: cycle %d: id %d ended after %d beats, expected %d",
			i.Name(), i.domain.Cycle(), beat.ID, len(r.Data), r.Addr.Beats()))
	}

	r.Cycle = i.domain.Cycle()
	i.results = append(i.results, *r)
	i.outstanding = append(i.outstanding[:idx], i.outstanding[idx+1:]...)
}

// WriteInitiator issues queued write bursts and collects the responses.
type WriteInitiator struct {
	*hardware.ComponentBase

	Port *axi.WritePort

	domain      *hardware.Domain
	rng         *rand.Rand
	readyChance float64
	bReady      bool
	dataFirst   bool

	awQueue     []axi.Addr
	wQueue      []axi.WriteData
	pendingData [][]axi.WriteData
	outstanding map[uint32]int
	results     []WriteResult
	errors      []error

	awFire   bool
	wFire    bool
	bFire    bool
	bPayload axi.WriteResp
}

// NewWriteInitiator creates a write initiator and registers it to the
// domain. readyChance is the probability that B is ready in a cycle.
func NewWriteInitiator(
	d *hardware.Domain,
	name string,
	port *axi.WritePort,
	seed int64,
	readyChance float64,
) *WriteInitiator {
	if port == nil {
		port = axi.NewWritePort(d, name+".Port")
	}

	i := &WriteInitiator{
		ComponentBase: hardware.NewComponentBase(name),
		Port:          port,
		domain:        d,
		rng:           rand.New(rand.NewSource(seed)),
		readyChance:   readyChance,
		bReady:        readyChance >= 1,
		outstanding:   make(map[uint32]int),
	}
	d.Register(i)

	return i
}

// SendDataFirst makes the initiator offer write data before the address is
// accepted.
func (i *WriteInitiator) SendDataFirst() {
	i.dataFirst = true
}

// Enqueue adds write bursts. Missing data is filled with a pattern derived
// from the address.
func (i *WriteInitiator) Enqueue(bursts ...WriteBurst) {
	for _, b := range bursts {
		beats := make([]axi.WriteData, b.Addr.Beats())

		for n := range beats {
			data := b.Addr.BeatAddr(n) ^ uint64(b.Addr.ID)<<48
			if n < len(b.Data) {
				data = b.Data[n]
			}

			beats[n] = axi.WriteData{
				Data: data,
				Strb: 0xff,
				Last: n == len(beats)-1,
			}
		}

		i.awQueue = append(i.awQueue, b.Addr)

		if i.dataFirst {
			i.wQueue = append(i.wQueue, beats...)
		} else {
			i.pendingData = append(i.pendingData, beats)
		}
	}
}

// Results returns the received responses in order.
func (i *WriteInitiator) Results() []WriteResult {
	return i.results
}

// Errors returns the protocol errors seen by the initiator.
func (i *WriteInitiator) Errors() []error {
	return i.errors
}

// Done tells if every burst has been responded.
func (i *WriteInitiator) Done() bool {
	if len(i.awQueue) > 0 || len(i.wQueue) > 0 || len(i.pendingData) > 0 {
		return false
	}

	for _, n := range i.outstanding {
		if n > 0 {
			return false
		}
	}

	return true
}

// Evaluate drives AW, W and B ready.
func (i *WriteInitiator) Evaluate() {
	if len(i.awQueue) > 0 {
		i.Port.AW.Drive(i.awQueue[0])
	} else {
		i.Port.AW.Idle()
	}

	if len(i.wQueue) > 0 {
		i.Port.W.Drive(i.wQueue[0])
	} else {
		i.Port.W.Idle()
	}

	i.Port.B.Ready.Set(i.bReady)

	i.awFire = i.Port.AW.Fire()
	i.wFire = i.Port.W.Fire()
	i.bFire = i.Port.B.Fire()
	i.bPayload = i.Port.B.Payload.Get()
}

// Tick records handshakes.
func (i *WriteInitiator) Tick() {
	if i.awFire {
		i.outstanding[i.awQueue[0].ID]++
		i.awQueue = i.awQueue[1:]

		if !i.dataFirst {
			i.wQueue = append(i.wQueue, i.pendingData[0]...)
			i.pendingData = i.pendingData[1:]
		}
	}

	if i.wFire {
		i.wQueue = i.wQueue[1:]
	}

	if i.bFire {
		i.receiveResp(i.bPayload)
	}

	i.bReady = i.rng.Float64() < i.readyChance
	i.awFire = false
	i.wFire = false
	i.bFire = false
}

func (i *WriteInitiator) receiveResp(b axi.WriteResp) {
	if i.outstanding[b.ID] == 0 {
		i.errors = append(i.errors, fmt.Errorf(
			"%s: cycle %d: B with unknown id %d",
			i.Name(), i.domain.Cycle(), b.ID))

		return
	}

	i.outstanding[b.ID]--
	i.results = append(i.results, WriteResult{
		ID:    b.ID,
		Resp:  b.Resp,
		Cycle: i.domain.Cycle(),
	})
}
