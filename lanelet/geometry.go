package lanelet

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

// tangentStep is the finite-difference step used to derive the centerline
// tangent at a sampled arc length (§4.1: "evaluated at [s, s+0.01]").
const tangentStep = 0.01

// ToMapPose converts a lanelet position to a world pose: samples the
// centerline spline at s, offsets laterally along the left normal, and
// applies rpy on top of the tangent-derived yaw.
func (n *Network) ToMapPose(pos LaneletPosition) (Pose, bool) {
	l := n.Get(pos.LaneletID)
	if l == nil {
		return Pose{}, false
	}
	base := n.sampleExtended(l, pos.S)
	tangentYaw := n.tangentYawExtended(l, pos.S)

	normalAngle := tangentYaw + math.Pi/2
	offsetPoint := geometry.Point{
		X: base.X + math.Cos(normalAngle)*pos.Offset,
		Y: base.Y + math.Sin(normalAngle)*pos.Offset,
		Z: base.Z,
	}
	return Pose{
		Position: offsetPoint,
		Roll:     pos.Roll,
		Pitch:    pos.Pitch,
		Yaw:      tangentYaw + pos.Yaw,
	}, true
}

// TangentVector returns the unit tangent of the centerline at s.
func (n *Network) TangentVector(laneletID int32, s float64) (geometry.Point, bool) {
	l := n.Get(laneletID)
	if l == nil {
		return geometry.Point{}, false
	}
	yaw := n.tangentYawExtended(l, s)
	return geometry.Point{X: math.Cos(yaw), Y: math.Sin(yaw)}, true
}

// sampleExtended samples l's spline at s, allowing s to run slightly beyond
// l's own length by continuing into the start of its straight-or-first
// follower (§4.1 "to allow s slightly beyond length"). Falls back to
// clamping at l's own end when l has no follower.
func (n *Network) sampleExtended(l *Lanelet, s float64) geometry.Point {
	length := l.Length()
	if s <= length {
		return l.spline.Eval(s)
	}
	c, ok := straightOrFirst(l.Following)
	if !ok {
		return l.spline.Eval(length)
	}
	next := n.Get(c.ID)
	if next == nil {
		return l.spline.Eval(length)
	}
	overflow := s - length
	if overflow > next.Length() {
		overflow = next.Length()
	}
	return next.spline.Eval(overflow)
}

// tangentYawExtended derives the tangent yaw at s by finite difference over
// [s, s+tangentStep], sampling across the lanelet boundary into the
// straight-or-first follower when s runs past l's length, so the tangent at
// a lanelet's end reflects the actual transition rather than degenerating
// to a zero-length chord (§4.1).
func (n *Network) tangentYawExtended(l *Lanelet, s float64) float64 {
	p0 := n.sampleExtended(l, s)
	p1 := n.sampleExtended(l, s+tangentStep)
	return math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
}

// straightOrFirst returns the "straight" connection among cs if one exists,
// else the first connection, else the zero value with ok=false.
func straightOrFirst(cs []Connection) (Connection, bool) {
	for _, c := range cs {
		if c.Turn == TurnStraight {
			return c, true
		}
	}
	if len(cs) > 0 {
		return cs[0], true
	}
	return Connection{}, false
}

// AdvanceLanelet returns the straight-or-first follower of id, used by
// entity kinematics to consume arc-length overflow into the next lanelet
// (§4.2 step 3).
func (n *Network) AdvanceLanelet(id int32) (int32, bool) {
	l := n.Get(id)
	if l == nil {
		return 0, false
	}
	c, ok := straightOrFirst(l.Following)
	if !ok {
		return 0, false
	}
	return c.ID, true
}

// FollowingLanelets expands forward along the straight turn direction (or
// first successor) until `distance` of lanelet length is covered, returning
// the ids visited in order.
func (n *Network) FollowingLanelets(id int32, distance float64) []int32 {
	return n.walkChain(id, distance, func(l *Lanelet) []Connection { return l.Following })
}

// PreviousLanelets is the backward analogue of FollowingLanelets.
func (n *Network) PreviousLanelets(id int32, distance float64) []int32 {
	return n.walkChain(id, distance, func(l *Lanelet) []Connection { return l.Previous })
}

func (n *Network) walkChain(id int32, distance float64, edges func(*Lanelet) []Connection) []int32 {
	var out []int32
	covered := 0.0
	cur := id
	for covered < distance {
		l := n.Get(cur)
		if l == nil {
			break
		}
		out = append(out, cur)
		covered += l.Length()
		next, ok := straightOrFirst(edges(l))
		if !ok {
			break
		}
		cur = next.ID
	}
	return out
}

// SpeedLimit returns the minimum of the per-lanelet regulated speeds of ids.
func (n *Network) SpeedLimit(ids []int32) float64 {
	speeds := lo.Filter(lo.Map(ids, func(id int32, _ int) float64 {
		if l := n.Get(id); l != nil {
			return l.SpeedMax
		}
		return math.Inf(1)
	}), func(v float64, _ int) bool { return !math.IsInf(v, 1) })
	if len(speeds) == 0 {
		return math.Inf(1)
	}
	min := speeds[0]
	for _, v := range speeds[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
