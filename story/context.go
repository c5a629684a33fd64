package story

import (
	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/openscenario-sim/oscsim/story/condition"
)

// EvalContext is the tick-scoped view of simulation state the tree
// evaluates against (§9 "replace the global API singleton with an
// explicit context object"). It implements both condition.Context and
// action.Context, so conditions and actions read/mutate the same state
// without either subpackage importing story.
type EvalContext struct {
	now      float64
	entities *entity.Manager
	network  *lanelet.Network
	params   map[string]float64

	// states and everComplete are updated during the tree walk by
	// recordState (called from Base.step and Event.Step), keyed by the
	// element's Name.
	states       map[string]RunState
	everComplete map[string]bool
}

// NewEvalContext creates a context bound to the given simulation state.
func NewEvalContext(entities *entity.Manager, network *lanelet.Network, params map[string]float64) *EvalContext {
	if params == nil {
		params = make(map[string]float64)
	}
	return &EvalContext{
		entities:     entities,
		network:      network,
		params:       params,
		states:       make(map[string]RunState),
		everComplete: make(map[string]bool),
	}
}

func (c *EvalContext) Now() float64                  { return c.now }
func (c *EvalContext) Entities() *entity.Manager      { return c.entities }
func (c *EvalContext) Network() *lanelet.Network      { return c.network }
func (c *EvalContext) SetNow(t float64)               { c.now = t }

func (c *EvalContext) Entity(name string) (*entity.Entity, bool) {
	e := c.entities.Get(name)
	return e, e != nil
}

func (c *EvalContext) Parameter(name string) (float64, bool) {
	v, ok := c.params[name]
	return v, ok
}

func (c *EvalContext) SetParameter(name string, v float64) { c.params[name] = v }

func (c *EvalContext) ElementState(name string) (condition.ElementState, bool) {
	rs, ok := c.states[name]
	if !ok {
		return 0, false
	}
	return toElementState(rs), true
}

func (c *EvalContext) Traversed(name string) (bool, bool) {
	done, ok := c.everComplete[name]
	return done, ok
}

// recordState is called by Base.step on entry and on exit of each node's
// step (and by Event.Step for a suppressed event) to publish its current
// state and traversal history for condition lookups.
func (c *EvalContext) recordState(name string, rs RunState) {
	if name == "" {
		return
	}
	c.states[name] = rs
	if rs == StateComplete {
		c.everComplete[name] = true
	}
}

func toElementState(rs RunState) condition.ElementState {
	switch rs {
	case StateStandby:
		return condition.ElementStandby
	case StateStartTransition:
		return condition.ElementStartTransition
	case StateRunning:
		return condition.ElementRunning
	case StateEndTransition:
		return condition.ElementEndTransition
	case StateStopTransition:
		return condition.ElementStopTransition
	default:
		return condition.ElementComplete
	}
}
