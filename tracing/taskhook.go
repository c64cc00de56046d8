package tracing

import (
	"fmt"

	"github.com/sarchlab/axiconnect/crossbar"
	"github.com/sarchlab/axiconnect/demux"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
	"github.com/sarchlab/axiconnect/sim/id"
	"github.com/sarchlab/axiconnect/sim/naming"
	"github.com/sarchlab/axiconnect/throttle"
)

// TaskHook turns component hooks into tasks.
//
//   - A crossbar lock is a task from the grant to the release.
//   - A throttle block is a task from the first blocked cycle to the
//     admission. A block of another request ends it.
//   - A demux route is a task from accepting the address to the last
//     response.
type TaskHook struct {
	cycles CycleTeller
	tracer Tracer
	open   map[string]Task
}

// NewTaskHook creates a TaskHook that reports to the tracer.
func NewTaskHook(cycles CycleTeller, tracer Tracer) *TaskHook {
	return &TaskHook{
		cycles: cycles,
		tracer: tracer,
		open:   make(map[string]Task),
	}
}

// CollectTrace lets the tracer collect tasks from every component of the
// domain.
func CollectTrace(d *hardware.Domain, tracer Tracer) *TaskHook {
	h := NewTaskHook(d, tracer)

	for _, c := range d.Components() {
		c.AcceptHook(h)
	}

	return h
}

// OpenTasks returns the number of tasks that have started but not ended.
func (h *TaskHook) OpenTasks() int {
	return len(h.open)
}

// Func converts a hook invocation into a task event.
func (h *TaskHook) Func(ctx hooking.HookCtx) {
	where := ""
	if named, ok := ctx.Domain.(naming.Named); ok {
		where = named.Name()
	}

	switch ctx.Pos {
	case crossbar.HookPosGrant:
		info := ctx.Item.(crossbar.GrantInfo)
		h.start(where, KindLock,
			naming.BuildNameWithIndex("", "Port", info.Port), info)
	case crossbar.HookPosRelease:
		h.end(where, KindLock, ctx.Item)
	case throttle.HookPosBlock:
		h.start(where, KindBlock, ctx.Item.(fmt.Stringer).String(), ctx.Detail)
	case throttle.HookPosAdmit:
		h.end(where, KindBlock, ctx.Item)
	case demux.HookPosRoute:
		info := ctx.Item.(demux.RouteInfo)
		h.start(where, KindRoute, routeTarget(ctx.Domain, info.Target), info)
	case demux.HookPosComplete:
		h.end(where, KindRoute, ctx.Item)
	}
}

type addressMapped interface {
	AddressMap() *demux.AddressMap
}

func routeTarget(component hooking.Hookable, target int) string {
	if target == demux.DecodeErrorTarget {
		return "DecodeError"
	}

	if m, ok := component.(addressMapped); ok {
		return m.AddressMap().Region(target).Name
	}

	return naming.BuildNameWithIndex("", "Target", target)
}

func (h *TaskHook) start(where, kind, what string, detail any) {
	now := h.cycles.Cycle()
	task := Task{
		ID:         id.Generate(),
		Kind:       kind,
		What:       what,
		Where:      where,
		StartCycle: now,
		EndCycle:   now,
		Detail:     detail,
	}

	key := where + "." + kind
	if prev, ok := h.open[key]; ok {
		prev.EndCycle = now
		h.tracer.EndTask(prev)
	}

	h.open[key] = task
	h.tracer.StartTask(task)
}

// end closes the open task of the kind at where. Admissions without a prior
// block end nothing.
func (h *TaskHook) end(where, kind string, detail any) {
	key := where + "." + kind

	task, ok := h.open[key]
	if !ok {
		return
	}

	delete(h.open, key)

	task.EndCycle = h.cycles.Cycle()
	task.Detail = detail
	h.tracer.EndTask(task)
}
