package lanelet

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// curvatureSamples is the number of equal parameter intervals (so
// curvatureSamples+1 sample points, u = i/curvatureSamples) used to estimate
// a Hermite curve's maximum planar curvature (§13 open-question decision).
const curvatureSamples = 16

// maxCurvatureBound is the acceptance threshold a lane-change curve's
// discrete-sample max curvature must stay under.
const maxCurvatureBound = 1.0

// candidateStep is the spacing, in meters of target-lanelet arc length,
// between candidate endpoints tried during lane-change synthesis.
const candidateStep = 1.0

// targetArcLength is the arc length a lane-change curve should approximate;
// candidates are scored by |targetArcLength - arc_length|.
const targetArcLength = 40.0

// HermiteCurve is a cubic Hermite curve in the map plane between two poses,
// parameterized by u in [0, 1].
type HermiteCurve struct {
	P0, P1 geometry.Point
	T0, T1 geometry.Point // tangent vectors (already scaled by magnitude)
}

// Eval samples the curve at parameter u.
func (h *HermiteCurve) Eval(u float64) geometry.Point {
	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	return geometry.Point{
		X: h00*h.P0.X + h10*h.T0.X + h01*h.P1.X + h11*h.T1.X,
		Y: h00*h.P0.Y + h10*h.T0.Y + h01*h.P1.Y + h11*h.T1.Y,
		Z: h00*h.P0.Z + h10*h.T0.Z + h01*h.P1.Z + h11*h.T1.Z,
	}
}

// Yaw returns the curve's tangent heading at parameter u, derived from its
// analytic first derivative (§4.2 step 4: the live pose during an active
// lane change follows the curve, not just its endpoint).
func (h *HermiteCurve) Yaw(u float64) float64 {
	dx, dy := h.firstDerivative(u)
	return math.Atan2(dy, dx)
}

// firstDerivative evaluates dC/du at u.
func (h *HermiteCurve) firstDerivative(u float64) (dx, dy float64) {
	u2 := u * u
	dh00 := 6*u2 - 6*u
	dh10 := 3*u2 - 4*u + 1
	dh01 := -6*u2 + 6*u
	dh11 := 3*u2 - 2*u
	dx = dh00*h.P0.X + dh10*h.T0.X + dh01*h.P1.X + dh11*h.T1.X
	dy = dh00*h.P0.Y + dh10*h.T0.Y + dh01*h.P1.Y + dh11*h.T1.Y
	return
}

// secondDerivative evaluates d2C/du2 at u.
func (h *HermiteCurve) secondDerivative(u float64) (ddx, ddy float64) {
	ddh00 := 12*u - 6
	ddh10 := 6*u - 4
	ddh01 := -12*u + 6
	ddh11 := 6*u - 2
	ddx = ddh00*h.P0.X + ddh10*h.T0.X + ddh01*h.P1.X + ddh11*h.T1.X
	ddy = ddh00*h.P0.Y + ddh10*h.T0.Y + ddh01*h.P1.Y + ddh11*h.T1.Y
	return
}

// MaxCurvature estimates the curve's maximum planar curvature by sampling
// curvatureSamples+1 points and evaluating the standard planar-curve formula
// on each one's analytic derivatives (§13).
func (h *HermiteCurve) MaxCurvature() float64 {
	maxK := 0.0
	for i := 0; i <= curvatureSamples; i++ {
		u := float64(i) / float64(curvatureSamples)
		dx, dy := h.firstDerivative(u)
		ddx, ddy := h.secondDerivative(u)
		denom := math.Pow(dx*dx+dy*dy, 1.5)
		if denom < 1e-9 {
			continue
		}
		k := math.Abs(dx*ddy-dy*ddx) / denom
		if k > maxK {
			maxK = k
		}
	}
	return maxK
}

// ArcLength approximates the curve's arc length by summing the
// curvatureSamples chord lengths between curvatureSamples+1 sample points.
func (h *HermiteCurve) ArcLength() float64 {
	total := 0.0
	prev := h.Eval(0)
	for i := 1; i <= curvatureSamples; i++ {
		u := float64(i) / float64(curvatureSamples)
		cur := h.Eval(u)
		dx := cur.X - prev.X
		dy := cur.Y - prev.Y
		total += math.Sqrt(dx*dx + dy*dy)
		prev = cur
	}
	return total
}

// LaneChangeTrajectory builds the best lane-change Hermite curve from
// fromPose to a point along targetLaneletID (§4.1). Returns ok=false if no
// candidate satisfies the curvature bound.
func (n *Network) LaneChangeTrajectory(fromPose Pose, targetLaneletID int32) (*HermiteCurve, float64, bool) {
	target := n.Get(targetLaneletID)
	if target == nil {
		return nil, 0, false
	}

	var best *HermiteCurve
	var bestS float64
	bestScore := math.Inf(1)

	fromTangent := geometry.Point{X: math.Cos(fromPose.Yaw), Y: math.Sin(fromPose.Yaw)}

	for s := 0.0; s <= target.Length(); s += candidateStep {
		toPoint := target.spline.Eval(s)
		toYaw := n.tangentYawExtended(target, s)
		toTangent := geometry.Point{X: math.Cos(toYaw), Y: math.Sin(toYaw)}

		dx := toPoint.X - fromPose.Position.X
		dy := toPoint.Y - fromPose.Position.Y
		euclid := math.Sqrt(dx*dx + dy*dy)
		tangentMag := 0.5 * euclid

		curve := &HermiteCurve{
			P0: fromPose.Position,
			P1: toPoint,
			T0: geometry.Point{X: fromTangent.X * tangentMag, Y: fromTangent.Y * tangentMag},
			T1: geometry.Point{X: toTangent.X * tangentMag, Y: toTangent.Y * tangentMag},
		}

		if curve.MaxCurvature() >= maxCurvatureBound {
			continue
		}
		arc := curve.ArcLength()
		score := math.Abs(targetArcLength - arc)
		if score < bestScore {
			bestScore = score
			best = curve
			bestS = s
		}
	}

	if best == nil {
		return nil, 0, false
	}
	return best, bestS, true
}
