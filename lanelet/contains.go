package lanelet

import "math"

// IsInLanelet reports whether s is within [0, length(laneletID)] — the
// arc-length containment test (§13 open question decision; lateral
// containment is a separate check, see WithinLateralBounds).
func (n *Network) IsInLanelet(laneletID int32, s float64) bool {
	l := n.Get(laneletID)
	if l == nil {
		return false
	}
	return s >= 0 && s <= l.Length()
}

// WithinLateralBounds reports whether offset keeps a lanelet position
// between the left and right bounds, approximated as a constant half-width:
// half the distance between the first left-bound point and the first
// right-bound point. The width is not evaluated per s.
func (n *Network) WithinLateralBounds(laneletID int32, offset float64) bool {
	l := n.Get(laneletID)
	if l == nil {
		return false
	}
	halfWidth := l.halfWidth()
	return offset >= -halfWidth && offset <= halfWidth
}

func (l *Lanelet) halfWidth() float64 {
	if len(l.LeftBound) == 0 || len(l.RightBound) == 0 {
		return 0
	}
	lp := l.LeftBound[0]
	rp := l.RightBound[0]
	dx := lp.X - rp.X
	dy := lp.Y - rp.Y
	return math.Hypot(dx, dy) / 2
}
