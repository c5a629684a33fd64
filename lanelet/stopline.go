package lanelet

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// segmentIntersect returns the intersection point of segments (p1,p2) and
// (q1,q2) if they cross, and whether they do.
func segmentIntersect(p1, p2, q1, q2 geometry.Point) (geometry.Point, bool) {
	r := geometry.Point{X: p2.X - p1.X, Y: p2.Y - p1.Y}
	s := geometry.Point{X: q2.X - q1.X, Y: q2.Y - q1.Y}
	denom := r.X*s.Y - r.Y*s.X
	if math.Abs(denom) < 1e-12 {
		return geometry.Point{}, false
	}
	qp := geometry.Point{X: q1.X - p1.X, Y: q1.Y - p1.Y}
	t := (qp.X*s.Y - qp.Y*s.X) / denom
	u := (qp.X*r.Y - qp.Y*r.X) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geometry.Point{}, false
	}
	return geometry.Point{X: p1.X + t*r.X, Y: p1.Y + t*r.Y}, true
}

// DistanceToStopLine walks `following` (an ordered lanelet-id chain, as
// returned by FollowingLanelets) looking for the first lanelet carrying a
// stop_sign regulatory element, intersects its centerline against that
// element's stop line, and returns the longitudinal distance from
// `fromPosition` to the crossing point (§4.1).
func (n *Network) DistanceToStopLine(following []int32, fromPosition LaneletPosition) (float64, bool) {
	for _, id := range following {
		l := n.Get(id)
		if l == nil {
			continue
		}
		for _, re := range l.RegulatoryElements {
			if re.Type != RegulatoryStopSign || len(re.StopLine) < 2 {
				continue
			}
			s, ok := nearestCrossingS(l, re.StopLine)
			if !ok {
				continue
			}
			return n.LongitudinalDistance(fromPosition, LaneletPosition{LaneletID: id, S: s})
		}
	}
	return 0, false
}

// nearestCrossingS intersects each centerline segment of l against the
// stop line, returning the arc length s of the nearest crossing. When a
// segment crosses the stop line more than once (degenerate, since both are
// line segments this can only happen across several centerline segments),
// the nearest is kept (§13 open question decision).
func nearestCrossingS(l *Lanelet, stopLine []geometry.Point) (float64, bool) {
	best := math.Inf(1)
	found := false
	for i := 0; i < len(l.Centerline)-1; i++ {
		p1, p2 := l.Centerline[i], l.Centerline[i+1]
		for j := 0; j < len(stopLine)-1; j++ {
			q1, q2 := stopLine[j], stopLine[j+1]
			cross, ok := segmentIntersect(p1, p2, q1, q2)
			if !ok {
				continue
			}
			segLen := math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
			partial := math.Hypot(cross.X-p1.X, cross.Y-p1.Y)
			s := l.centerlineLength[i] + math.Min(partial, segLen)
			if s < best {
				best = s
				found = true
			}
		}
	}
	return best, found
}

// boundaryPolygon closes a lanelet's left/right bounds into a polygon:
// left bound forward, right bound reversed.
func boundaryPolygon(l *Lanelet) []geometry.Point {
	poly := make([]geometry.Point, 0, len(l.LeftBound)+len(l.RightBound)+1)
	poly = append(poly, l.LeftBound...)
	for i := len(l.RightBound) - 1; i >= 0; i-- {
		poly = append(poly, l.RightBound[i])
	}
	if len(poly) > 0 {
		poly = append(poly, poly[0])
	}
	return poly
}

// CollisionPointOnLanelet intersects lanelet `laneletID`'s centerline
// against the boundary polygon of `crossingID`'s lanelet, returning the arc
// length s of the first crossing found along the centerline (§4.1).
func (n *Network) CollisionPointOnLanelet(laneletID, crossingID int32) (float64, bool) {
	l := n.Get(laneletID)
	crossing := n.Get(crossingID)
	if l == nil || crossing == nil {
		return 0, false
	}
	polygon := boundaryPolygon(crossing)
	for i := 0; i < len(l.Centerline)-1; i++ {
		p1, p2 := l.Centerline[i], l.Centerline[i+1]
		for j := 0; j < len(polygon)-1; j++ {
			q1, q2 := polygon[j], polygon[j+1]
			cross, ok := segmentIntersect(p1, p2, q1, q2)
			if !ok {
				continue
			}
			partial := math.Hypot(cross.X-p1.X, cross.Y-p1.Y)
			return l.centerlineLength[i] + partial, true
		}
	}
	return 0, false
}
