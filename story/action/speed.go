package action

import "github.com/openscenario-sim/oscsim/entity"

// SpeedActionDynamicsShape is the transition shape of a SpeedAction (§4.6).
// The kinematics model (C2) only integrates a single clamped-accel
// convergence to a continuous target, so every non-step shape installs
// the same continuous directive; Step alone snaps the speed immediately.
type SpeedActionDynamicsShape int

const (
	ShapeStep SpeedActionDynamicsShape = iota
	ShapeLinear
	ShapeSinusoidal
	ShapeCubic
)

// SpeedActionTargetKind selects whether Speed.Value is an absolute m/s
// value or a delta relative to RefEntity's current speed.
type SpeedActionTargetKind int

const (
	TargetAbsolute SpeedActionTargetKind = iota
	TargetRelativeToEntity
)

// Speed installs a target-speed directive on an entity (§4.6 "SpeedAction").
type Speed struct {
	Entity    string
	Shape     SpeedActionDynamicsShape
	TargetKind SpeedActionTargetKind
	Value     float64
	RefEntity string
}

func (a Speed) Apply(ctx Context) (bool, error) {
	e, err := lookup(ctx, a.Entity)
	if err != nil {
		return false, err
	}
	target := a.Value
	if a.TargetKind == TargetRelativeToEntity {
		ref, err := lookup(ctx, a.RefEntity)
		if err != nil {
			return false, err
		}
		target += ref.Status.SpeedMps
	}
	if a.Shape == ShapeStep {
		e.Status.SpeedMps = target
		e.Status.Target = entity.TargetSpeed{Value: target, Continuous: false}
	} else {
		e.Status.Target = entity.TargetSpeed{Value: target, Continuous: true}
	}
	return true, nil
}
