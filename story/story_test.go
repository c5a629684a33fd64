package story

import (
	"testing"

	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/story/action"
	"github.com/openscenario-sim/oscsim/story/condition"
	"github.com/stretchr/testify/require"
)

func newTestCtx() *EvalContext {
	return NewEvalContext(entity.NewManager(), nil, nil)
}

// fakeAction completes after N applications, for exercising the state
// machine without needing a live entity/network.
type fakeAction struct{ remaining int }

func (f *fakeAction) Apply(_ action.Context) (bool, error) {
	if f.remaining <= 0 {
		return true, nil
	}
	f.remaining--
	return f.remaining == 0, nil
}

// TestStateMachineSingleStep grounds testable property 7: each element
// advances at most one transition per tick.
func TestStateMachineSingleStep(t *testing.T) {
	ctx := newTestCtx()
	node := &ActionNode{Base: Base{Name: "a1", StartTrigger: AlwaysTrue}, Impl: &fakeAction{remaining: 0}}

	require.Equal(t, StateStandby, node.State)

	require.NoError(t, node.Step(ctx))
	require.Equal(t, StateStartTransition, node.State)

	require.NoError(t, node.Step(ctx))
	require.Equal(t, StateRunning, node.State)

	require.NoError(t, node.Step(ctx))
	require.Equal(t, StateEndTransition, node.State)

	require.NoError(t, node.Step(ctx))
	require.Equal(t, StateComplete, node.State)

	// further ticks are no-ops.
	require.NoError(t, node.Step(ctx))
	require.Equal(t, StateComplete, node.State)
}

func TestStandbyNeverStartsWithoutTrigger(t *testing.T) {
	ctx := newTestCtx()
	falseTrigger := Trigger{Groups: nil} // no groups => never satisfied
	node := &ActionNode{Base: Base{Name: "a1", StartTrigger: falseTrigger}, Impl: &fakeAction{}}
	for i := 0; i < 5; i++ {
		require.NoError(t, node.Step(ctx))
	}
	require.Equal(t, StateStandby, node.State)
}

func TestManeuverGroupReExecutesUpToMaximumCount(t *testing.T) {
	ctx := newTestCtx()
	ev := &Event{Base: Base{Name: "e1", StartTrigger: AlwaysTrue}, Actions: []*ActionNode{
		{Base: Base{Name: "a1", StartTrigger: AlwaysTrue}, Impl: &fakeAction{}},
	}}
	mvr := &Maneuver{Base: Base{Name: "m1", StartTrigger: AlwaysTrue}, Events: []*Event{ev}}
	group := &ManeuverGroup{Base: Base{Name: "g1", StartTrigger: AlwaysTrue}, Maneuvers: []*Maneuver{mvr}, MaximumExecutionCount: 2}

	for tick := 0; tick < 200; tick++ {
		require.NoError(t, group.Step(ctx))
		if group.State == StateComplete && group.executionCount == 2 {
			break
		}
	}
	require.Equal(t, StateComplete, group.State)
	require.Equal(t, 2, group.executionCount)
}

// gate is a Condition a test toggles manually to control when an event's
// start trigger becomes satisfied.
type gate struct{ open bool }

func (g *gate) Evaluate(condition.Context) (bool, error) { return g.open, nil }

func TestEventOverwriteCancelsRunningSibling(t *testing.T) {
	ctx := newTestCtx()
	lowGate := &gate{open: true}
	highGate := &gate{open: false}
	low := &Event{Base: Base{Name: "low", StartTrigger: Trigger{Groups: [][]condition.Condition{{lowGate}}}}, Priority: PriorityParallel,
		Actions: []*ActionNode{{Base: Base{Name: "la", StartTrigger: AlwaysTrue}, Impl: &fakeAction{remaining: 100}}}}
	high := &Event{Base: Base{Name: "high", StartTrigger: Trigger{Groups: [][]condition.Condition{{highGate}}}}, Priority: PriorityOverwrite,
		Actions: []*ActionNode{{Base: Base{Name: "ha", StartTrigger: AlwaysTrue}, Impl: &fakeAction{remaining: 1}}}}
	mvr := &Maneuver{Base: Base{Name: "m1", StartTrigger: AlwaysTrue}, Events: []*Event{low, high}}

	// drive low into runningState first; high's gate stays closed.
	for i := 0; i < 10 && low.State != StateRunning; i++ {
		require.NoError(t, mvr.Step(ctx))
	}
	require.Equal(t, StateRunning, low.State)
	require.Equal(t, StateStandby, high.State)

	// open high's gate: it starts this tick and should force low to stop.
	highGate.open = true
	require.NoError(t, mvr.Step(ctx))
	require.Equal(t, StateStopTransition, low.State)
}

func TestSimulationTimeStopTrigger(t *testing.T) {
	ctx := newTestCtx()
	sb := &Storyboard{
		StopTrigger: &Trigger{Groups: [][]condition.Condition{{
			condition.SimulationTime{Value: 10, Rule: condition.GreaterThan},
		}}},
	}
	ctx.SetNow(5)
	require.NoError(t, sb.Step(ctx))
	require.False(t, sb.Ended)

	ctx.SetNow(10.5)
	require.NoError(t, sb.Step(ctx))
	require.True(t, sb.Ended)
}
