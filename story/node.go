package story

// Base is the run-state machine shared by every story-tree node (§4.6,
// §9 "tagged union": each concrete node type embeds Base and supplies the
// work its runningState does via children()).
type Base struct {
	Name         string
	State        RunState
	StartTrigger Trigger
	StopTrigger  *Trigger // nil: no explicit stop, relies on natural end

	// externalStop is set by requestStop (Event priority Overwrite) and
	// consumed by the next step() call — it never
	// forces a state change directly, preserving the one-transition-per-
	// tick invariant (§8 testable property 7).
	externalStop bool
}

// step advances the node at most one transition this tick (§8 testable
// property 7). children is called only while State == StateRunning, and
// returns whether the node has reached its natural end this tick.
func (b *Base) step(ctx *EvalContext, children func() (done bool, err error)) error {
	ctx.recordState(b.Name, b.State)
	defer func() { ctx.recordState(b.Name, b.State) }()
	switch b.State {
	case StateStandby:
		ok, err := b.StartTrigger.Evaluate(ctx)
		if err != nil {
			return err
		}
		if ok {
			b.State = StateStartTransition
		}
	case StateStartTransition:
		b.State = StateRunning
	case StateRunning:
		if b.externalStop {
			b.externalStop = false
			b.State = StateStopTransition
			return nil
		}
		done, err := children()
		if err != nil {
			return err
		}
		stop := false
		if b.StopTrigger != nil {
			stop, err = b.StopTrigger.Evaluate(ctx)
			if err != nil {
				return err
			}
		}
		if stop || done {
			b.State = StateEndTransition
		}
	case StateEndTransition:
		b.State = StateComplete
	case StateStopTransition:
		b.State = StateComplete
	case StateComplete:
		// terminal; a ManeuverGroup may reset it back to StateStandby
		// for another execution (see ManeuverGroup.step).
	}
	return nil
}

// requestStop marks a running node to transition to stopTransition on its
// next step, used by Event priority Overwrite (§4.6). The Storyboard's
// global StopTrigger does not use it; it ends the storyboard directly.
func (b *Base) requestStop() {
	if b.State == StateRunning {
		b.externalStop = true
	}
}
