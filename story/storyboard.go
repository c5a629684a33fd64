package story

// Storyboard is the root of the story tree: an Init block that must
// complete before any Story starts, the Stories themselves, and a global
// StopTrigger that ends the whole scenario (§4.6).
type Storyboard struct {
	Init         []*ActionNode
	Stories      []*Story
	StopTrigger  *Trigger

	initDone bool
	Ended    bool
}

// Step advances the storyboard by exactly one tick: the Init block until
// it completes, then every Story, then the global stop check (§4.6).
func (s *Storyboard) Step(ctx *EvalContext) error {
	if s.Ended {
		return nil
	}
	if !s.initDone {
		// Init actions must be constructed with StartTrigger == AlwaysTrue
		// so they begin on their own, without an explicit condition.
		allDone := true
		for _, a := range s.Init {
			if err := a.Step(ctx); err != nil {
				return err
			}
			if a.State != StateComplete {
				allDone = false
			}
		}
		if allDone {
			s.initDone = true
		}
		return nil
	}

	for _, story := range s.Stories {
		if err := story.Step(ctx); err != nil {
			return err
		}
	}

	if s.StopTrigger != nil {
		stop, err := s.StopTrigger.Evaluate(ctx)
		if err != nil {
			return err
		}
		if stop {
			s.Ended = true
		}
	}
	return nil
}
