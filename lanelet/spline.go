package lanelet

import "git.fiblab.net/general/common/v2/geometry"

// natural2DSpline is a natural cubic spline of a 2D polyline parameterized
// by its accumulated Euclidean arc length, used to interpolate the
// centerline at arbitrary s (§4.1 "Interpolation: natural cubic spline over
// accumulated Euclidean distance along centerline points").
type natural2DSpline struct {
	t    []float64 // knot positions (accumulated arc length)
	x, y []float64 // coordinates at each knot
	// second derivatives at each knot, solved once at construction time
	mx, my []float64
}

func newNatural2DSpline(points []geometry.Point, t []float64) *natural2DSpline {
	n := len(points)
	x := make([]float64, n)
	y := make([]float64, n)
	for i, p := range points {
		x[i] = p.X
		y[i] = p.Y
	}
	return &natural2DSpline{
		t:  t,
		x:  x,
		y:  y,
		mx: solveNaturalSplineSecondDerivatives(t, x),
		my: solveNaturalSplineSecondDerivatives(t, y),
	}
}

// solveNaturalSplineSecondDerivatives solves the tridiagonal system for the
// second derivatives of a natural cubic spline (zero curvature at both
// ends) through the knots (t[i], v[i]).
func solveNaturalSplineSecondDerivatives(t, v []float64) []float64 {
	n := len(t)
	m := make([]float64, n)
	if n < 3 {
		return m
	}

	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = t[i+1] - t[i]
		if h[i] <= 0 {
			h[i] = 1e-9
		}
	}

	// Thomas algorithm over the n-2 interior equations.
	a := make([]float64, n-2) // sub-diagonal
	b := make([]float64, n-2) // diagonal
	c := make([]float64, n-2) // super-diagonal
	d := make([]float64, n-2) // right-hand side

	for i := 1; i < n-1; i++ {
		idx := i - 1
		a[idx] = h[i-1]
		b[idx] = 2 * (h[i-1] + h[i])
		c[idx] = h[i]
		d[idx] = 6 * ((v[i+1]-v[i])/h[i] - (v[i]-v[i-1])/h[i-1])
	}

	// forward elimination
	cp := make([]float64, n-2)
	dp := make([]float64, n-2)
	cp[0] = c[0] / b[0]
	dp[0] = d[0] / b[0]
	for i := 1; i < n-2; i++ {
		denom := b[i] - a[i]*cp[i-1]
		if denom == 0 {
			denom = 1e-12
		}
		cp[i] = c[i] / denom
		dp[i] = (d[i] - a[i]*dp[i-1]) / denom
	}

	// back substitution
	sol := make([]float64, n-2)
	sol[n-3] = dp[n-3]
	for i := n - 4; i >= 0; i-- {
		sol[i] = dp[i] - cp[i]*sol[i+1]
	}

	for i := 1; i < n-1; i++ {
		m[i] = sol[i-1]
	}
	return m
}

// Eval samples the spline at arc length s, clamping to the knot range.
func (sp *natural2DSpline) Eval(s float64) geometry.Point {
	n := len(sp.t)
	if n == 1 {
		return geometry.Point{X: sp.x[0], Y: sp.y[0]}
	}
	if s <= sp.t[0] {
		return sp.evalSegment(0, sp.t[0])
	}
	last := sp.t[n-1]
	if s >= last {
		return sp.evalSegment(n-2, last)
	}
	i := sp.segmentFor(s)
	return sp.evalSegment(i, s)
}

// segmentFor finds i such that t[i] <= s < t[i+1] via binary search over
// the monotone knot sequence.
func (sp *natural2DSpline) segmentFor(s float64) int {
	lo, hi := 0, len(sp.t)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if sp.t[mid] <= s {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (sp *natural2DSpline) evalSegment(i int, s float64) geometry.Point {
	h := sp.t[i+1] - sp.t[i]
	if h <= 0 {
		return geometry.Point{X: sp.x[i], Y: sp.y[i]}
	}
	a := (sp.t[i+1] - s) / h
	b := (s - sp.t[i]) / h
	x := a*sp.x[i] + b*sp.x[i+1] +
		((a*a*a-a)*sp.mx[i]+(b*b*b-b)*sp.mx[i+1])*(h*h)/6
	y := a*sp.y[i] + b*sp.y[i+1] +
		((a*a*a-a)*sp.my[i]+(b*b*b-b)*sp.my[i+1])*(h*h)/6
	return geometry.Point{X: x, Y: y}
}
