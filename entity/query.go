package entity

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/lanelet"
)

// corners returns the four corners of an oriented 2D bounding box centered
// at pose.Position, rotated by pose.Yaw.
func corners(box BoundingBox, pose lanelet.Pose) [4]geometry.Point {
	hl, hw := box.Length/2, box.Width/2
	cos, sin := math.Cos(pose.Yaw), math.Sin(pose.Yaw)
	local := [4][2]float64{{hl, hw}, {hl, -hw}, {-hl, -hw}, {-hl, hw}}
	var out [4]geometry.Point
	for i, p := range local {
		out[i] = geometry.Point{
			X: pose.Position.X + p[0]*cos - p[1]*sin,
			Y: pose.Position.Y + p[0]*sin + p[1]*cos,
			Z: pose.Position.Z,
		}
	}
	return out
}

// axes returns the two distinct edge-normal axes of an oriented rectangle
// for the separating-axis test.
func axes(c [4]geometry.Point) [2]geometry.Point {
	e0 := geometry.Point{X: c[1].X - c[0].X, Y: c[1].Y - c[0].Y}
	e1 := geometry.Point{X: c[2].X - c[1].X, Y: c[2].Y - c[1].Y}
	norm := func(p geometry.Point) geometry.Point {
		m := math.Hypot(p.X, p.Y)
		if m == 0 {
			return p
		}
		return geometry.Point{X: -p.Y / m, Y: p.X / m}
	}
	return [2]geometry.Point{norm(e0), norm(e1)}
}

func project(c [4]geometry.Point, axis geometry.Point) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, p := range c {
		d := p.X*axis.X + p.Y*axis.Y
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return
}

// intervalGap returns the separation between two projected intervals: a
// positive value is the gap between them, negative/zero means overlap.
func intervalGap(minA, maxA, minB, maxB float64) float64 {
	if maxA < minB {
		return minB - maxA
	}
	if maxB < minA {
		return minA - maxB
	}
	return 0
}

// BoundingBoxDistance computes the separating-axis distance between two
// entities' oriented 2D bounding boxes: 0 when overlapping, else the
// largest per-axis gap (§4.2 step 6).
func BoundingBoxDistance(aBox BoundingBox, aPose lanelet.Pose, bBox BoundingBox, bPose lanelet.Pose) float64 {
	ca := corners(aBox, aPose)
	cb := corners(bBox, bPose)
	maxGap := 0.0
	for _, axisSet := range [2][2]geometry.Point{axes(ca), axes(cb)} {
		for _, axis := range axisSet {
			aMin, aMax := project(ca, axis)
			bMin, bMax := project(cb, axis)
			gap := intervalGap(aMin, aMax, bMin, bMax)
			if gap > maxGap {
				maxGap = gap
			}
		}
	}
	return maxGap
}

// Collides reports whether the two entities' bounding boxes overlap.
func Collides(aBox BoundingBox, aPose lanelet.Pose, bBox BoundingBox, bPose lanelet.Pose) bool {
	return BoundingBoxDistance(aBox, aPose, bBox, bPose) <= 0
}

// TimeHeadway is (relative longitudinal distance)/v of the leader; it is
// undefined (ok=false) when the leader is not ahead or the leader's
// speed is zero (§4.2 step 6).
func TimeHeadway(n *lanelet.Network, follower, leader *Entity) (float64, bool) {
	if follower.Status.Frame != FrameLane || leader.Status.Frame != FrameLane {
		return 0, false
	}
	if leader.Status.SpeedMps <= 0 {
		return 0, false
	}
	dist, ok := n.LongitudinalDistance(follower.Status.LanePos, leader.Status.LanePos)
	if !ok || dist <= 0 {
		return 0, false
	}
	return dist / leader.Status.SpeedMps, true
}

// ReachPosition reports whether an entity's world position is within
// tolerance of target.
func ReachPosition(n *lanelet.Network, e *Entity, target geometry.Point, tolerance float64) bool {
	pose, ok := e.WorldPosition(n)
	if !ok {
		return false
	}
	d := math.Hypot(pose.Position.X-target.X, pose.Position.Y-target.Y)
	return d < tolerance
}

// RelativePose returns b's pose relative to a. When either entity has no
// valid position, it returns the NaN-position sentinel rather than an
// error, per §4.2/§7 — callers must preserve this, not replace it with a
// default pose.
func RelativePose(n *lanelet.Network, a, b *Entity) lanelet.Pose {
	aPose, aOK := a.WorldPosition(n)
	bPose, bOK := b.WorldPosition(n)
	if !aOK || !bOK {
		return nanPose()
	}
	cos, sin := math.Cos(-aPose.Yaw), math.Sin(-aPose.Yaw)
	dx := bPose.Position.X - aPose.Position.X
	dy := bPose.Position.Y - aPose.Position.Y
	return lanelet.Pose{
		Position: geometry.Point{
			X: dx*cos - dy*sin,
			Y: dx*sin + dy*cos,
			Z: bPose.Position.Z - aPose.Position.Z,
		},
		Yaw: bPose.Yaw - aPose.Yaw,
	}
}
