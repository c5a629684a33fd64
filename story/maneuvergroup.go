package story

// ManeuverGroup is a set of Maneuvers executed together, restartable up
// to MaximumExecutionCount times (§4.6 "Maneuver groups respect
// maximumExecutionCount").
type ManeuverGroup struct {
	Base
	Maneuvers             []*Maneuver
	MaximumExecutionCount int // values <= 1 (including 0) run the group once; the loader defaults it to 1.

	executionCount int
}

func (g *ManeuverGroup) Step(ctx *EvalContext) error {
	wasStandby := g.State == StateStandby
	if err := g.step(ctx, func() (bool, error) {
		allDone := true
		for _, m := range g.Maneuvers {
			if err := m.Step(ctx); err != nil {
				return false, err
			}
			if m.State != StateComplete {
				allDone = false
			}
		}
		return allDone, nil
	}); err != nil {
		return err
	}
	if wasStandby && g.State == StateStartTransition {
		g.executionCount++
	}
	if g.State == StateComplete && g.MaximumExecutionCount > 0 && g.executionCount < g.MaximumExecutionCount {
		g.resetForReExecution()
	}
	return nil
}

// resetForReExecution rewinds this group and its maneuvers/events/actions
// to standbyState so the group's start trigger can fire again.
func (g *ManeuverGroup) resetForReExecution() {
	g.State = StateStandby
	for _, m := range g.Maneuvers {
		m.State = StateStandby
		for _, e := range m.Events {
			e.State = StateStandby
			for _, a := range e.Actions {
				a.State = StateStandby
			}
		}
	}
}
