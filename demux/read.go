package demux

import (
	"github.com/sarchlab/axiconnect/axi"
)

// ReadDemux routes read requests of one initiator to the target whose region
// holds the address. It serves one burst at a time.
type ReadDemux struct {
	demuxBase

	In   *axi.ReadPort
	Outs []*axi.ReadPort

	arOuts []*axi.Channel[axi.Addr]
	rOuts  []*axi.Channel[axi.ReadData]

	pendingTarget int
	pendingReq    axi.Addr
	arFire        bool
	rFire         bool
	rBeat         axi.ReadData
}

// Evaluate connects the initiator to the selected target or to the
// decode-error responder.
func (d *ReadDemux) Evaluate() {
	arSel, rSel := -1, -1
	acceptError := false

	switch d.state {
	case Idle:
		if d.In.AR.Valid.Get() {
			d.pendingReq = d.In.AR.Payload.Get()
			d.pendingTarget = d.decode(d.pendingReq)
			arSel = d.pendingTarget
			acceptError = d.pendingTarget == DecodeErrorTarget
		}
	case Response:
		rSel = d.target
	}

	routeTo(d.In.AR, d.arOuts, arSel)
	routeFrom(d.rOuts, d.In.R, rSel)

	if acceptError {
		d.In.AR.Ready.Set(true)
	}

	if d.state == ErrorResponse {
		d.In.R.Drive(axi.ReadData{
			ID:   d.request.ID,
			Resp: axi.DecodeError,
			Last: d.beat == d.request.Beats()-1,
		})
	}

	d.arFire = d.In.AR.Fire()
	d.rFire = d.In.R.Fire()
	d.rBeat = d.In.R.Payload.Get()
}

// Tick moves the routing state machine.
func (d *ReadDemux) Tick() {
	switch d.state {
	case Idle:
		if d.arFire {
			d.accept(d.pendingTarget, d.pendingReq)
			d.state = Response

			if d.target == DecodeErrorTarget {
				d.state = ErrorResponse
			}
		}
	case Response, ErrorResponse:
		if d.rFire {
			d.resp = axi.CombineResp(d.resp, d.rBeat.Resp)
			d.beat++

			if d.rBeat.Last {
				d.complete(d.resp)
				d.state = Idle
			}
		}
	}

	d.arFire = false
	d.rFire = false
}
