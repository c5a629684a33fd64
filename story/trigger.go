package story

import "github.com/openscenario-sim/oscsim/story/condition"

// Trigger is a disjunction of conjunctions of Conditions: `OR` across
// Groups, `AND` within a group — the OpenSCENARIO ConditionGroup/Trigger
// shape (§4.6 "Triggers ... are themselves evaluatable and return
// boolean").
type Trigger struct {
	Groups [][]condition.Condition
}

// A Trigger with no groups at all is never satisfied by this
// representation, so the zero Trigger cannot stand in for "always true".
// AlwaysTrue (a single empty group) is; use it for start-triggers that fire
// on the first tick
// (e.g. Storyboard.Init, a Story with no explicit start condition).
var AlwaysTrue = Trigger{Groups: [][]condition.Condition{{}}}

func (t Trigger) Evaluate(ctx condition.Context) (bool, error) {
	for _, group := range t.Groups {
		ok := true
		for _, c := range group {
			v, err := c.Evaluate(ctx)
			if err != nil {
				return false, err
			}
			if !v {
				ok = false
				break
			}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
