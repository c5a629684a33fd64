package story

// Maneuver is an ordered set of Events whose concurrent execution is
// arbitrated by each Event's Priority (§4.6).
type Maneuver struct {
	Base
	Events []*Event
}

func (m *Maneuver) Step(ctx *EvalContext) error {
	return m.step(ctx, func() (bool, error) {
		applyEventPriority(ctx, m.Events)
		allDone := true
		for _, e := range m.Events {
			if err := e.Step(ctx); err != nil {
				return false, err
			}
			if e.State != StateComplete {
				allDone = false
			}
		}
		return allDone, nil
	})
}

// applyEventPriority resolves PriorityOverwrite/PrioritySkip among
// sibling events before they step this tick (§4.6 "Event priority ...
// governs concurrent execution"). Document order decides precedence.
func applyEventPriority(ctx *EvalContext, events []*Event) {
	anyRunning := false
	for _, e := range events {
		if e.running() {
			anyRunning = true
			break
		}
	}
	for _, e := range events {
		if !e.wantsToStart(ctx) {
			continue
		}
		switch e.Priority {
		case PriorityOverwrite:
			for _, sib := range events {
				if sib != e && sib.running() {
					sib.requestStop()
				}
			}
		case PrioritySkip:
			if anyRunning {
				e.suppressed = true
			}
		case PriorityParallel:
			// no arbitration needed.
		}
	}
}
