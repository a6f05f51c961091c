package eventtree

import (
	"fmt"

	"github.com/openpra-org/scram-go/event"
)

// cloneContext carries the per-path house-event overrides plus a counter
// shared across an entire Analyze walk, so every cloned house event/gate
// gets a distinct id (the original engine gets this uniqueness for free from
// the source event's own id via its "__clone__." prefix; a shared counter
// gives the same guarantee here across however many paths clone the same
// source gate).
type cloneContext struct {
	overrides map[string]bool
	counter   *int
}

// CloneFormula deep-clones formula, substituting any house event named in
// overrides with a private singleton fixed to the override's state: basic
// events are shared (never cloned), gates are cloned recursively only when
// overrides is non-empty, and a house event already in its target state is
// returned unchanged. Ported from the original engine's free-function Clone.
// Each call gets its own id counter; callers that clone many formulas
// against a shared gate namespace (see eventtree.Analyze) use
// cloneFormulaShared instead.
func CloneFormula(formula *event.Formula, overrides map[string]bool) *event.Formula {
	counter := 0
	ctx := &cloneContext{overrides: overrides, counter: &counter}
	return ctx.cloneFormula(formula)
}

// cloneFormulaShared is CloneFormula with an externally owned counter, so
// repeated calls across one Analyze walk never mint two clones with the
// same synthesized id.
func cloneFormulaShared(formula *event.Formula, overrides map[string]bool, counter *int) *event.Formula {
	ctx := &cloneContext{overrides: overrides, counter: counter}
	return ctx.cloneFormula(formula)
}

func (c *cloneContext) cloneFormula(formula *event.Formula) *event.Formula {
	args := make([]event.Arg, len(formula.Args))
	for i, arg := range formula.Args {
		args[i] = event.Arg{Event: c.cloneArgEvent(arg.Event), Complement: arg.Complement}
	}
	clone, _ := event.NewFormula(formula.Connective, args, formula.MinNumber, formula.MaxNumber)
	return clone
}

func (c *cloneContext) cloneArgEvent(e event.ArgEvent) event.ArgEvent {
	switch v := e.(type) {
	case *event.BasicEvent:
		return v
	case *event.HouseEvent:
		wanted, overridden := c.overrides[v.ID]
		if !overridden || wanted == v.State {
			return v
		}
		(*c.counter)++
		return &event.HouseEvent{ID: fmt.Sprintf("__clone__.%d.%s", *c.counter, v.ID), Name: v.Name, State: wanted}
	case *event.Gate:
		if len(c.overrides) == 0 {
			return v
		}
		(*c.counter)++
		clone := &event.Gate{ID: fmt.Sprintf("__clone__.%d.%s", *c.counter, v.ID), Name: v.Name}

		clone.Formula = c.cloneFormula(v.Formula)
		return clone
	default:
		return e
	}
}
