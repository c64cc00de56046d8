package timing

import (
	"fmt"
	"log"

	"github.com/sarchlab/axiconnect/sim/hooking"
	"github.com/sarchlab/axiconnect/sim/naming"
)

// EventLogger is an engine hook that logs every event before it is handled.
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger creates an EventLogger that writes to logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func logs the event at HookPosBeforeEvent.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	h.logger.Printf("%.3fns %T -> %s",
		evt.Time()*1e9, evt, handlerName(evt.Handler()))
}

func handlerName(h Handler) string {
	if n, ok := h.(naming.Named); ok {
		return n.Name()
	}

	return fmt.Sprintf("%T", h)
}
