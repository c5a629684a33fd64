package story

// Priority governs how concurrent sibling Events within the same
// ManeuverGroup interact when one wants to start while another runs
// (§4.6).
type Priority int

const (
	PriorityParallel Priority = iota
	PriorityOverwrite
	PrioritySkip
)

// Event wraps one or more Actions that all start together and complete
// together (§4.6, §3 GLOSSARY "Event").
type Event struct {
	Base
	Priority Priority
	Actions  []*ActionNode

	// suppressed is set for one tick by the parent Maneuver's priority
	// arbitration (PrioritySkip) to keep this event in standbyState even
	// though its own start trigger is currently true.
	suppressed bool
}

func (e *Event) Step(ctx *EvalContext) error {
	if e.suppressed {
		e.suppressed = false
		ctx.recordState(e.Name, e.State)
		return nil
	}
	return e.step(ctx, func() (bool, error) {
		allDone := true
		for _, a := range e.Actions {
			if err := a.Step(ctx); err != nil {
				return false, err
			}
			if a.State != StateComplete {
				allDone = false
			}
		}
		return allDone, nil
	})
}

// wantsToStart reports whether e is eligible to begin this tick: it is in
// standby and its start trigger currently evaluates true.
// Used by Maneuver to apply sibling priority before stepping events.
func (e *Event) wantsToStart(ctx *EvalContext) bool {
	if e.State != StateStandby {
		return false
	}
	ok, err := e.StartTrigger.Evaluate(ctx)
	return err == nil && ok
}

func (e *Event) running() bool {
	return e.State != StateStandby && e.State != StateComplete
}
