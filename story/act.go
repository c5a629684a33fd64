package story

// Act groups ManeuverGroups that run together (§4.6, §3 GLOSSARY).
type Act struct {
	Base
	ManeuverGroups []*ManeuverGroup
}

func (a *Act) Step(ctx *EvalContext) error {
	return a.step(ctx, func() (bool, error) {
		allDone := true
		for _, g := range a.ManeuverGroups {
			if err := g.Step(ctx); err != nil {
				return false, err
			}
			if g.State != StateComplete {
				allDone = false
			}
		}
		return allDone, nil
	})
}

// Story groups Acts, run in sequence order within the Story's own
// runningState (§4.6).
type Story struct {
	Base
	Acts []*Act
}

func (s *Story) Step(ctx *EvalContext) error {
	return s.step(ctx, func() (bool, error) {
		allDone := true
		for _, a := range s.Acts {
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
