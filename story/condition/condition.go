// Package condition implements the trigger predicates a storyboard element
// evaluates over entity state, simulation time and storyboard-element
// state (§4.6 "Conditions cover: by-entity ... by-value ... traversed").
package condition

import (
	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/lanelet"
)

// ElementState mirrors a storyboard element's run-state coarsely enough
// for StoryboardElementStateCondition/TraversedCondition to read, without
// this package importing the story package (which imports condition).
type ElementState int

const (
	ElementStandby ElementState = iota
	ElementStartTransition
	ElementRunning
	ElementEndTransition
	ElementStopTransition
	ElementComplete
)

// Context is the read-only view of simulation state a Condition evaluates
// against. story.EvalContext implements it.
type Context interface {
	Now() float64
	Entity(name string) (*entity.Entity, bool)
	Network() *lanelet.Network
	Parameter(name string) (float64, bool)
	ElementState(name string) (ElementState, bool)
	// Traversed reports whether the named element has reached
	// completeState at least once, surviving any maximumExecutionCount
	// reset back to standbyState (§4.6 "traversed").
	Traversed(name string) (bool, bool)
}

// Condition is a single boolean predicate (§4.6).
type Condition interface {
	Evaluate(ctx Context) (bool, error)
}

// Rule is the comparison a numeric condition applies.
type Rule int

const (
	LessThan Rule = iota
	GreaterThan
	EqualTo
)

func (r Rule) compare(lhs, rhs float64) bool {
	switch r {
	case LessThan:
		return lhs < rhs
	case GreaterThan:
		return lhs > rhs
	default:
		return lhs == rhs
	}
}
