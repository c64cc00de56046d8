package crossbar

import (
	"fmt"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/sim/hooking"
)

// State is the lock state of a crossbar.
type State int

// Lock states. Read crossbars use Idle, AddressGranted and PayloadInFlight.
// Write crossbars in LockUntilResponse mode add ResponsePending. Write
// crossbars in OutstandingCount mode use Idle and Locked.
const (
	Idle State = iota
	AddressGranted
	PayloadInFlight
	ResponsePending
	Locked
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AddressGranted:
		return "AddressGranted"
	case PayloadInFlight:
		return "PayloadInFlight"
	case ResponsePending:
		return "ResponsePending"
	case Locked:
		return "Locked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// HookPosGrant is triggered when a port wins the shared port. The item is a
// GrantInfo.
var HookPosGrant = &hooking.HookPos{Name: "Grant"}

// HookPosRelease is triggered when the shared port is released. The item is
// a ReleaseInfo.
var HookPosRelease = &hooking.HookPos{Name: "Release"}

// GrantInfo describes a grant.
type GrantInfo struct {
	Port int
	Addr axi.Addr
}

// ReleaseInfo describes a release.
type ReleaseInfo struct {
	Port         int
	Transactions int
}

// routeDown connects input sel to out for a channel that flows toward the
// shared port. Every other input sees ready low. A negative sel isolates all
// inputs.
func routeDown[T comparable](ins []*axi.Channel[T], out *axi.Channel[T], sel int) {
	for i, in := range ins {
		if i != sel {
			in.Ready.Set(false)
		}
	}

	if sel < 0 {
		out.Idle()
		return
	}

	axi.Forward(ins[sel], out)
}

// routeUp connects out to input sel for a channel that flows from the shared
// port. Every other input sees valid low. A negative sel isolates all inputs.
func routeUp[T comparable](out *axi.Channel[T], ins []*axi.Channel[T], sel int) {
	for i, in := range ins {
		if i != sel {
			in.Idle()
		}
	}

	if sel < 0 {
		out.Ready.Set(false)
		return
	}

	axi.Forward(out, ins[sel])
}

func channels[P any, T comparable](ports []P, get func(P) *axi.Channel[T]) []*axi.Channel[T] {
	chs := make([]*axi.Channel[T], len(ports))
	for i, p := range ports {
		chs[i] = get(p)
	}

	return chs
}

func requests(chs []*axi.Channel[axi.Addr]) []bool {
	reqs := make([]bool, len(chs))
	for i, ch := range chs {
		reqs[i] = ch.Valid.Get()
	}

	return reqs
}
