package demux

import (
	"fmt"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
)

// HookPosRoute is triggered when a request is accepted. The item is a
// RouteInfo.
var HookPosRoute = &hooking.HookPos{Name: "Route"}

// HookPosComplete is triggered when the response of a request completes. The
// item is a Completion.
var HookPosComplete = &hooking.HookPos{Name: "Complete"}

// DecodeErrorTarget is the target index of requests that match no region.
const DecodeErrorTarget = -1

// RouteInfo describes where a request goes.
type RouteInfo struct {
	Target int
	Addr   axi.Addr
}

// Completion is the final status of a request. Read statuses are folded over
// all beats.
type Completion struct {
	Target int
	ID     uint32
	Resp   axi.Resp
}

// State is the state of a demux.
type State int

// Demux states.
const (
	Idle State = iota
	Payload
	Response
	ErrorPayload
	ErrorResponse
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Payload:
		return "Payload"
	case Response:
		return "Response"
	case ErrorPayload:
		return "ErrorPayload"
	case ErrorResponse:
		return "ErrorResponse"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type demuxBase struct {
	*hardware.ComponentBase

	owner   hooking.Hookable
	addrMap *AddressMap
	state   State
	target  int
	request axi.Addr
	beat    int
	resp    axi.Resp
}

// State returns the state of the demux.
func (d *demuxBase) State() State {
	return d.state
}

// AddressMap returns the address map.
func (d *demuxBase) AddressMap() *AddressMap {
	return d.addrMap
}

func (d *demuxBase) accept(target int, req axi.Addr) {
	d.target = target
	d.request = req
	d.beat = 0
	d.resp = axi.ExclusiveOK

	d.InvokeHook(hooking.HookCtx{
		Domain: d.owner,
		Pos:    HookPosRoute,
		Item:   RouteInfo{Target: target, Addr: req},
	})
}

func (d *demuxBase) complete(resp axi.Resp) {
	d.InvokeHook(hooking.HookCtx{
		Domain: d.owner,
		Pos:    HookPosComplete,
		Item: Completion{
			Target: d.target,
			ID:     d.request.ID,
			Resp:   resp,
		},
	})
}

func (d *demuxBase) decode(req axi.Addr) int {
	target, ok := d.addrMap.Decode(req.Addr)
	if !ok {
		return DecodeErrorTarget
	}

	return target
}

// routeTo forwards a channel toward the selected target and isolates the
// other targets.
func routeTo[T comparable](in *axi.Channel[T], outs []*axi.Channel[T], sel int) {
	for i, out := range outs {
		if i != sel {
			out.Idle()
		}
	}

	if sel < 0 {
		in.Ready.Set(false)
		return
	}

	axi.Forward(in, outs[sel])
}

// routeFrom forwards a channel from the selected target and blocks the other
// targets.
func routeFrom[T comparable](outs []*axi.Channel[T], in *axi.Channel[T], sel int) {
	for i, out := range outs {
		if i != sel {
			out.Ready.Set(false)
		}
	}

	if sel < 0 {
		in.Idle()
		return
	}

	axi.Forward(outs[sel], in)
}
