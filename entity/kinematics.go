package entity

import (
	"math"

	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/samber/lo"
)

// standStillEpsilon is the speed below which the stand-still timer
// accumulates (§4.2 step 5).
const standStillEpsilon = 1e-3

// Update advances the entity's kinematic state by one tick (§4.2).
func (e *Entity) Update(n *lanelet.Network, dt float64) {
	// 1. resolve target speed.
	accel := 0.0
	if e.Status.Target.Continuous {
		accel = lo.Clamp((e.Status.Target.Value-e.Status.SpeedMps)/dt, -e.Limits.MaxDecel, e.Limits.MaxAccel)
	}
	e.Status.AccelMps2 = accel

	// 2. integrate scalar speed.
	v := e.Status.SpeedMps + accel*dt
	v = lo.Clamp(v, 0, e.Limits.MaxSpeed)
	e.Status.SpeedMps = v

	// 3. advance along lanelet.
	if e.Status.Frame == FrameLane {
		e.advanceAlongLanelet(n, v*dt)
	}

	// 3b. requestAcquirePosition arrival: stop the entity once it reaches
	// the requested (lanelet, s, offset) (§6 "requestAcquirePosition").
	e.checkAcquirePositionArrival()

	// 4. lane-change curve evaluation.
	if e.Status.LaneChange.Active {
		e.advanceLaneChange(v * dt)
	}

	// 5. stand-still timer.
	if v < standStillEpsilon {
		e.Status.StandStillDuration += dt
	} else {
		e.Status.StandStillDuration = 0
	}
}

// advanceAlongLanelet walks s forward, consuming overflow into successor
// lanelets, preferring an assigned route chain over the map's default
// straight-or-first follower (§4.2 step 3, §12 RoutingAction support).
func (e *Entity) advanceAlongLanelet(n *lanelet.Network, ds float64) {
	s := e.Status.LanePos.S + ds
	for {
		cur := n.Get(e.Status.LanePos.LaneletID)
		if cur == nil {
			break
		}
		length := cur.Length()
		if s < length {
			break
		}
		next, ok := e.nextLaneletID(n)
		if !ok {
			s = length
			break
		}
		s -= length
		e.Status.LanePos.LaneletID = next
	}
	e.Status.LanePos.S = s
}

func (e *Entity) nextLaneletID(n *lanelet.Network) (int32, bool) {
	if len(e.Status.RouteLaneletIDs) > 0 && e.Status.RouteLaneletIDs[0] == e.Status.LanePos.LaneletID {
		if len(e.Status.RouteLaneletIDs) > 1 {
			next := e.Status.RouteLaneletIDs[1]
			e.Status.RouteLaneletIDs = e.Status.RouteLaneletIDs[1:]
			return next, true
		}
		return n.AdvanceLanelet(e.Status.LanePos.LaneletID)
	}
	return n.AdvanceLanelet(e.Status.LanePos.LaneletID)
}

// checkAcquirePositionArrival snaps to the requested s/offset and brings
// the entity to a stop once it reaches the lanelet requestAcquirePosition
// targeted, clearing the target so it only fires once (§6).
func (e *Entity) checkAcquirePositionArrival() {
	at := &e.Status.AcquireTarget
	if !at.Active || e.Status.Frame != FrameLane {
		return
	}
	if e.Status.LanePos.LaneletID != at.TargetLanelet || e.Status.LanePos.S < at.TargetS {
		return
	}
	e.Status.LanePos.S = at.TargetS
	e.Status.LanePos.Offset = at.TargetOffset
	e.Status.SpeedMps = 0
	e.Status.Target = TargetSpeed{Value: 0, Continuous: true}
	*at = AcquirePositionState{}
}

func (e *Entity) advanceLaneChange(ds float64) {
	lc := &e.Status.LaneChange
	if lc.ArcLength <= 0 {
		lc.Param = 1
	} else {
		lc.Param = math.Min(1, lc.Param+ds/lc.ArcLength)
	}
	if lc.Param >= 1 {
		e.Status.Frame = FrameLane
		e.Status.LanePos = lanelet.LaneletPosition{
			LaneletID: lc.TargetLanelet,
			S:         lc.TargetS,
			Offset:    0,
		}
		*lc = LaneChangeState{}
	}
}
