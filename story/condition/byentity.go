package condition

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/entity"
)

func lookup(ctx Context, name string) (*entity.Entity, error) {
	e, ok := ctx.Entity(name)
	if !ok {
		return nil, fmt.Errorf("NoSuchVariableNamed: entity %q", name)
	}
	return e, nil
}

// ReachPosition is true once the named entity's world position is within
// Tolerance of Target (§4.6, §4.2 step 6).
type ReachPosition struct {
	Entity    string
	Target    geometry.Point
	Tolerance float64
}

func (c ReachPosition) Evaluate(ctx Context) (bool, error) {
	e, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	return entity.ReachPosition(ctx.Network(), e, c.Target, c.Tolerance), nil
}

// Distance compares the Euclidean distance from the named entity to
// Target against Value under Rule.
type Distance struct {
	Entity string
	Target geometry.Point
	Value  float64
	Rule   Rule
}

func (c Distance) Evaluate(ctx Context) (bool, error) {
	e, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	pose, ok := e.WorldPosition(ctx.Network())
	if !ok {
		return false, nil
	}
	dx := pose.Position.X - c.Target.X
	dy := pose.Position.Y - c.Target.Y
	d := hypot(dx, dy)
	return c.Rule.compare(d, c.Value), nil
}

// RelativeDistance compares the Euclidean distance between two entities
// against Value under Rule.
type RelativeDistance struct {
	Entity      string
	RefEntity   string
	Value       float64
	Rule        Rule
}

func (c RelativeDistance) Evaluate(ctx Context) (bool, error) {
	a, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	b, err := lookup(ctx, c.RefEntity)
	if err != nil {
		return false, err
	}
	rel := entity.RelativePose(ctx.Network(), a, b)
	if isNaN(rel.Position.X) {
		return false, nil
	}
	d := hypot(rel.Position.X, rel.Position.Y)
	return c.Rule.compare(d, c.Value), nil
}

// TimeHeadway compares the follower's time headway to the named leader
// entity against Value under Rule; undefined headway (§4.2 step 6)
// evaluates false rather than erroring.
type TimeHeadway struct {
	Entity    string // follower
	RefEntity string // leader
	Value     float64
	Rule      Rule
}

func (c TimeHeadway) Evaluate(ctx Context) (bool, error) {
	follower, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	leader, err := lookup(ctx, c.RefEntity)
	if err != nil {
		return false, err
	}
	hw, ok := entity.TimeHeadway(ctx.Network(), follower, leader)
	if !ok {
		return false, nil
	}
	return c.Rule.compare(hw, c.Value), nil
}

// StandStill is true once the named entity's stand-still timer has
// accumulated at least Duration seconds.
type StandStill struct {
	Entity   string
	Duration float64
}

func (c StandStill) Evaluate(ctx Context) (bool, error) {
	e, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	return e.Status.StandStillDuration >= c.Duration, nil
}

// Acceleration compares the named entity's longitudinal acceleration
// against Value under Rule.
type Acceleration struct {
	Entity string
	Value  float64
	Rule   Rule
}

func (c Acceleration) Evaluate(ctx Context) (bool, error) {
	e, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	return c.Rule.compare(e.Status.AccelMps2, c.Value), nil
}

// Speed compares the named entity's scalar speed against Value under Rule.
type Speed struct {
	Entity string
	Value  float64
	Rule   Rule
}

func (c Speed) Evaluate(ctx Context) (bool, error) {
	e, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	return c.Rule.compare(e.Status.SpeedMps, c.Value), nil
}

// Collision is true when the named entity's bounding box overlaps
// RefEntity's.
type Collision struct {
	Entity    string
	RefEntity string
}

func (c Collision) Evaluate(ctx Context) (bool, error) {
	a, err := lookup(ctx, c.Entity)
	if err != nil {
		return false, err
	}
	b, err := lookup(ctx, c.RefEntity)
	if err != nil {
		return false, err
	}
	aPose, aOK := a.WorldPosition(ctx.Network())
	bPose, bOK := b.WorldPosition(ctx.Network())
	if !aOK || !bOK {
		return false, nil
	}
	return entity.Collides(a.Box, aPose, b.Box, bPose), nil
}

func hypot(x, y float64) float64 { return math.Hypot(x, y) }

func isNaN(f float64) bool { return f != f }
