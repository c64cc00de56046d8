package hardware

import (
	"github.com/sarchlab/axiconnect/sim/hooking"
	"github.com/sarchlab/axiconnect/sim/naming"
)

// A Component is a clocked circuit element.
//
// Evaluate is the combinational phase. It may be called several times per
// cycle and must drive every output it owns from its inputs and its registers
// only. Tick is the clock edge. It updates registers from values observed in
// the last Evaluate and must not read the registers of other components.
type Component interface {
	naming.Named
	hooking.Hookable

	Evaluate()
	Tick()
}

// ComponentBase provides the name and the hook list of a component.
type ComponentBase struct {
	hooking.HookableBase

	name string
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	naming.NameMustBeValid(name)

	return &ComponentBase{name: name}
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
