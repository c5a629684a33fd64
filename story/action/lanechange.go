package action

import "github.com/openscenario-sim/oscsim/entity"

// LaneChange installs a Hermite lane-change trajectory onto an entity and
// tracks it to completion (§4.6 "LaneChangeAction"). The trajectory is
// installed once; subsequent ticks let C2's per-tick update carry the
// entity along it.
type LaneChange struct {
	Entity        string
	TargetLanelet int32

	installed bool
}

func (a *LaneChange) Apply(ctx Context) (bool, error) {
	e, err := lookup(ctx, a.Entity)
	if err != nil {
		return false, err
	}
	if !a.installed {
		pose, ok := e.WorldPosition(ctx.Network())
		if !ok {
			return false, entityNotFound(a.Entity)
		}
		curve, targetS, ok := ctx.Network().LaneChangeTrajectory(pose, a.TargetLanelet)
		if !ok {
			return false, noLaneChangeTrajectory(a.Entity, a.TargetLanelet)
		}
		e.Status.LaneChange = entity.LaneChangeState{
			Active:        true,
			Curve:         curve,
			Param:         0,
			ArcLength:     curve.ArcLength(),
			TargetLanelet: a.TargetLanelet,
			TargetS:       targetS,
		}
		a.installed = true
		return false, nil
	}
	return !e.Status.LaneChange.Active, nil
}
