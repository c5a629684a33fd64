package lanelet

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

// resampleResolution is the segment length used to synthesize a centerline
// when a lanelet carries none of its own (§4.1 "Resampling policy").
const resampleResolution = 2.0

// Network is the directed lanelet graph loaded from a Provider: the
// immutable, freely-shared-for-reads HD-map (§5).
type Network struct {
	lanelets map[int32]*Lanelet
}

// Load builds a Network from a Provider, resampling centerlines that were
// not supplied and building the spline each lanelet interpolates over.
func Load(p Provider) (*Network, error) {
	raw, err := p.Lanelets()
	if err != nil {
		return nil, mapErrorf("map load: %v", err)
	}
	n := &Network{lanelets: make(map[int32]*Lanelet, len(raw))}
	for _, r := range raw {
		l := &Lanelet{
			ID:                 r.ID,
			Turn:               r.Turn,
			SpeedMax:           r.SpeedMax,
			LeftBound:          r.LeftBound,
			RightBound:         r.RightBound,
			Following:          r.FollowingIDs,
			Previous:           r.PreviousIDs,
			Left:               r.LeftIDs,
			Right:              r.RightIDs,
			Conflicting:        r.ConflictingIDs,
			RegulatoryElements: r.RegulatoryElements,
		}
		centerline := r.Centerline
		if len(centerline) < 2 {
			centerline, err = synthesizeCenterline(r.LeftBound, r.RightBound)
			if err != nil {
				return nil, mapErrorf("lanelet %d: %v", r.ID, err)
			}
		}
		l.Centerline = centerline
		l.centerlineLength = geometry.GetPolylineLengths2D(centerline)
		l.spline = newNatural2DSpline(centerline, l.centerlineLength)
		n.lanelets[r.ID] = l
	}
	return n, nil
}

// Get returns the lanelet with the given id, or nil if absent.
func (n *Network) Get(id int32) *Lanelet {
	return n.lanelets[id]
}

// synthesizeCenterline builds a centerline as the average of the left and
// right bounds, each resampled to the same point count at a fixed segment
// resolution (§4.1).
func synthesizeCenterline(left, right []geometry.Point) ([]geometry.Point, error) {
	if len(left) < 2 || len(right) < 2 {
		return nil, mapErrorf("cannot synthesize centerline: need >=2 boundary points")
	}
	leftLengths := geometry.GetPolylineLengths2D(left)
	rightLengths := geometry.GetPolylineLengths2D(right)
	avgLength := (leftLengths[len(leftLengths)-1] + rightLengths[len(rightLengths)-1]) / 2
	segments := int(avgLength / resampleResolution)
	if segments < 1 {
		segments = 1
	}
	leftR := resamplePolyline(left, leftLengths, segments)
	rightR := resamplePolyline(right, rightLengths, segments)
	center := make([]geometry.Point, segments+1)
	for i := range center {
		center[i] = geometry.Blend(leftR[i], rightR[i], 0.5)
	}
	return center, nil
}

// resamplePolyline returns `segments+1` points evenly spaced by arc length
// along the given polyline, using piecewise-linear interpolation between
// the original points.
func resamplePolyline(points []geometry.Point, lengths []float64, segments int) []geometry.Point {
	total := lengths[len(lengths)-1]
	out := make([]geometry.Point, segments+1)
	for i := 0; i <= segments; i++ {
		s := total * float64(i) / float64(segments)
		out[i] = positionAtArcLength(points, lengths, s)
	}
	return out
}

// positionAtArcLength samples a plain (non-spline) polyline at arc length s
// via linear interpolation between the bracketing points.
func positionAtArcLength(points []geometry.Point, lengths []float64, s float64) geometry.Point {
	n := len(lengths)
	if s <= lengths[0] {
		return points[0]
	}
	if s >= lengths[n-1] {
		return points[n-1]
	}
	i := findSegmentIndex(lengths, s)
	sLow, sHigh := lengths[i], lengths[i+1]
	k := 0.0
	if sHigh > sLow {
		k = (s - sLow) / (sHigh - sLow)
	}
	return geometry.Blend(points[i], points[i+1], lo.Clamp(k, 0, 1))
}

// findSegmentIndex does a binary-style scan over the monotone accumulated
// lengths to find i such that lengths[i] <= s < lengths[i+1].
func findSegmentIndex(lengths []float64, s float64) int {
	lo, hi := 0, len(lengths)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lengths[mid] <= s {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
