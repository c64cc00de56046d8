package demux

import (
	"github.com/sarchlab/axiconnect/axi"
)

// WriteDemux routes write requests of one initiator to the target whose
// region holds the address. It serves one burst at a time.
type WriteDemux struct {
	demuxBase

	In   *axi.WritePort
	Outs []*axi.WritePort

	awOuts []*axi.Channel[axi.Addr]
	wOuts  []*axi.Channel[axi.WriteData]
	bOuts  []*axi.Channel[axi.WriteResp]

	pendingTarget int
	pendingReq    axi.Addr
	awFire        bool
	wLastFire     bool
	bFire         bool
	bResp         axi.Resp
}

// Evaluate connects the initiator to the selected target or to the
// decode-error responder.
func (d *WriteDemux) Evaluate() {
	awSel, wSel, bSel := -1, -1, -1
	acceptError := false

	switch d.state {
	case Idle:
		if d.In.AW.Valid.Get() {
			d.pendingReq = d.In.AW.Payload.Get()
			d.pendingTarget = d.decode(d.pendingReq)
			awSel = d.pendingTarget
			acceptError = d.pendingTarget == DecodeErrorTarget
		}
	case Payload:
		wSel = d.target
	case Response:
		bSel = d.target
	}

	routeTo(d.In.AW, d.awOuts, awSel)
	routeTo(d.In.W, d.wOuts, wSel)
	routeFrom(d.bOuts, d.In.B, bSel)

	switch {
	case acceptError:
		d.In.AW.Ready.Set(true)
	case d.state == ErrorPayload:
		d.In.W.Ready.Set(true)
	case d.state == ErrorResponse:
		d.In.B.Drive(axi.WriteResp{
			ID:   d.request.ID,
			Resp: axi.DecodeError,
		})
	}

	d.awFire = d.In.AW.Fire()
	d.wLastFire = d.In.W.Fire() && d.In.W.Payload.Get().Last
	d.bFire = d.In.B.Fire()
	d.bResp = d.In.B.Payload.Get().Resp
}

// Tick moves the routing state machine.
func (d *WriteDemux) Tick() {
	switch d.state {
	case Idle:
		if d.awFire {
			d.accept(d.pendingTarget, d.pendingReq)
			d.state = Payload

			if d.target == DecodeErrorTarget {
				d.state = ErrorPayload
			}
		}
	case Payload:
		if d.wLastFire {
			d.state = Response
		}
	case ErrorPayload:
		if d.wLastFire {
			d.state = ErrorResponse
		}
	case Response, ErrorResponse:
		if d.bFire {
			d.complete(d.bResp)
			d.state = Idle
		}
	}

	d.awFire = false
	d.wLastFire = false
	d.bFire = false
}
