// Package hooking lets tracers, loggers and protocol checkers observe
// components without the components knowing about them.
package hooking

// HookPos names a site where hooks are invoked. Positions are compared by
// pointer, so each site declares one package-level HookPos.
type HookPos struct {
	Name string
}

// HookCtx carries what a hook sees when it is invoked.
type HookCtx struct {
	// Domain is the object that invokes the hook.
	Domain Hookable

	Pos    *HookPos
	Item   any
	Detail any
}

// A Hook is invoked by a Hookable at its hook positions.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// Hookable is an object that hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	RemoveHook(hook Hook) bool
	NumHooks() int
}

// HookableBase keeps a list of hooks and invokes them in attach order. Embed
// it to make a type Hookable.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook attaches a hook. Attaching the same comparable hook twice
// panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	if h.indexOf(hook) >= 0 {
		panic("hook already attached")
	}

	h.hooks = append(h.hooks, hook)
}

// RemoveHook detaches a hook and reports whether it was attached. Function
// hooks cannot be compared and are never found.
func (h *HookableBase) RemoveHook(hook Hook) bool {
	i := h.indexOf(hook)
	if i < 0 {
		return false
	}

	h.hooks = append(h.hooks[:i:i], h.hooks[i+1:]...)

	return true
}

// NumHooks returns how many hooks are attached. Callers check it to skip
// building a HookCtx nobody will see.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook calls every attached hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

func (h *HookableBase) indexOf(hook Hook) int {
	if _, isFunc := hook.(HookFunc); isFunc {
		return -1
	}

	for i, attached := range h.hooks {
		if _, isFunc := attached.(HookFunc); isFunc {
			continue
		}

		if attached == hook {
			return i
		}
	}

	return -1
}
