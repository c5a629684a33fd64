package condition

import "fmt"

// SimulationTime compares the clock's current time against Value under
// Rule (S5: `SimulationTime > 10`).
type SimulationTime struct {
	Value float64
	Rule  Rule
}

func (c SimulationTime) Evaluate(ctx Context) (bool, error) {
	return c.Rule.compare(ctx.Now(), c.Value), nil
}

// Parameter compares a named scenario parameter against Value under Rule.
type Parameter struct {
	Name  string
	Value float64
	Rule  Rule
}

func (c Parameter) Evaluate(ctx Context) (bool, error) {
	v, ok := ctx.Parameter(c.Name)
	if !ok {
		return false, fmt.Errorf("NoSuchVariableNamed: parameter %q", c.Name)
	}
	return c.Rule.compare(v, c.Value), nil
}

// StoryboardElementState is true when the named element is currently in
// State.
type StoryboardElementState struct {
	Element string
	State   ElementState
}

func (c StoryboardElementState) Evaluate(ctx Context) (bool, error) {
	s, ok := ctx.ElementState(c.Element)
	if !ok {
		return false, nil
	}
	return s == c.State, nil
}
