package story

import "github.com/openscenario-sim/oscsim/story/action"

// ActionNode is the leaf of the tree: a single Action wrapped in the
// common run-state machine (§4.6).
type ActionNode struct {
	Base
	Impl action.Action
}

func (n *ActionNode) Step(ctx *EvalContext) error {
	return n.step(ctx, func() (bool, error) { return n.Impl.Apply(ctx) })
}
