package linearize

import (
	"math"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// parametric is a curve evaluated over [breaks[0], breaks[len-1]]. The
// break parameters are always part of the output; they hold the defining
// positions and keep symmetric shapes from looking straight at the first
// midpoint probe.
type parametric struct {
	eval   func(t float64) geometry.Position
	breaks []float64
}

func uniformBreaks(t0, t1 float64, n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = t0 + (t1-t0)*float64(i)/float64(n)
	}
	out[n] = t1
	return out
}

// chain joins parts so that part i covers [i, i+1].
func chain(parts []parametric) parametric {
	var breaks []float64
	for i, p := range parts {
		t0, t1 := p.breaks[0], p.breaks[len(p.breaks)-1]
		for j, b := range p.breaks {
			if i > 0 && j == 0 {
				continue
			}
			breaks = append(breaks, float64(i)+(b-t0)/(t1-t0))
		}
	}
	eval := func(t float64) geometry.Position {
		i := int(math.Floor(t))
		if i >= len(parts) {
			i = len(parts) - 1
		}
		if i < 0 {
			i = 0
		}
		p := parts[i]
		t0, t1 := p.breaks[0], p.breaks[len(p.breaks)-1]
		return p.eval(t0 + (t-float64(i))*(t1-t0))
	}
	return parametric{eval: eval, breaks: breaks}
}

func parametricOf(seg geometry.Segment) (parametric, error) {
	switch s := seg.(type) {
	case *geometry.Arc:
		return arcThrough(s.Points[0], s.Points[1], s.Points[2], false), nil
	case *geometry.Circle:
		return arcThrough(s.Points[0], s.Points[1], s.Points[2], true), nil
	case *geometry.ArcString:
		parts := make([]parametric, 0, len(s.Points)/2)
		for _, a := range s.Arcs() {
			parts = append(parts, arcThrough(a.Points[0], a.Points[1], a.Points[2], false))
		}
		return chain(parts), nil
	case *geometry.ArcByBulge:
		return bulgeArcs(&s.ArcStringByBulge), nil
	case *geometry.ArcStringByBulge:
		return bulgeArcs(s), nil
	case *geometry.ArcByCenterPoint:
		return centerArc(s, s.Sweep()), nil
	case *geometry.CircleByCenterPoint:
		return centerArc(&s.ArcByCenterPoint, 360), nil
	case *geometry.Geodesic:
		return geodesic(s.Points), nil
	case *geometry.GeodesicString:
		return geodesic(s.Points), nil
	case *geometry.Bezier:
		return parametric{eval: s.PointAt, breaks: uniformBreaks(0, 1, max(4, len(s.Points)))}, nil
	case *geometry.BSpline:
		return bspline(s), nil
	case *geometry.Clothoid:
		return parametric{eval: s.PointAt, breaks: uniformBreaks(s.StartParameter, s.EndParameter, 8)}, nil
	case *geometry.CubicSpline:
		return cubicSpline(s)
	}
	return parametric{}, errors.Newf("no parametric form for %v", seg.SegmentKind())
}

// arcThrough returns the circular arc (or full circle) through p0, p1, p2.
// Collinear points degrade to the straight line p0-p2.
func arcThrough(p0, p1, p2 geometry.Position, full bool) parametric {
	dim := p0.Dim
	a, b, c := vec(p0), vec(p1), vec(p2)
	n := b.Sub(a).Cross(c.Sub(b))
	if n.Norm() <= 1e-12*math.Max(1, a.Sub(c).Norm2()) {
		return parametric{
			eval:   func(t float64) geometry.Position { return pos(a.Add(c.Sub(a).Mul(t)), dim) },
			breaks: []float64{0, 1},
		}
	}

	center := circumcenter(a, b, c)
	radius := a.Sub(center).Norm()
	u := a.Sub(center).Normalize()
	v := n.Normalize().Cross(u)
	angle := func(q r3.Vector) float64 {
		d := q.Sub(center)
		th := math.Atan2(d.Dot(v), d.Dot(u))
		if th < 0 {
			th += 2 * math.Pi
		}
		return th
	}

	sweep := 2 * math.Pi
	if !full {
		sweep = angle(c)
		if sweep == 0 {
			sweep = 2 * math.Pi
		}
	}
	eval := func(t float64) geometry.Position {
		th := t * sweep
		return pos(center.Add(u.Mul(radius*math.Cos(th))).Add(v.Mul(radius*math.Sin(th))), dim)
	}
	mid := angle(b) / sweep
	breaks := []float64{0, mid, 1}
	if full {
		breaks = []float64{0, 0.25, 0.5, 0.75, 1}
	}
	pinned := map[float64]geometry.Position{0: p0, mid: p1, 1: endOf(p0, p2, full)}
	return parametric{eval: exact(eval, pinned), breaks: breaks}
}

func endOf(p0, p2 geometry.Position, full bool) geometry.Position {
	if full {
		return p0
	}
	return p2
}

// exact pins the given parameters to the defining positions so round-off
// never moves an input vertex.
func exact(eval func(float64) geometry.Position, pinned map[float64]geometry.Position) func(float64) geometry.Position {
	return func(t float64) geometry.Position {
		if p, ok := pinned[t]; ok {
			return p
		}
		return eval(t)
	}
}

// circumcenter of the triangle a, b, c in 3D.
func circumcenter(a, b, c r3.Vector) r3.Vector {
	ac := a.Sub(c)
	bc := b.Sub(c)
	axb := ac.Cross(bc)
	num := bc.Mul(ac.Norm2()).Sub(ac.Mul(bc.Norm2())).Cross(axb)
	return c.Add(num.Mul(1 / (2 * axb.Norm2())))
}

func bulgeArcs(s *geometry.ArcStringByBulge) parametric {
	parts := make([]parametric, len(s.Bulges))
	for i := range s.Bulges {
		parts[i] = arcThrough(s.Points[i], s.Midpoint(i), s.Points[i+1], false)
	}
	return chain(parts)
}

// centerArc sweeps counter-clockwise from the start bearing by sweep
// degrees.
func centerArc(s *geometry.ArcByCenterPoint, sweep float64) parametric {
	start := s1.Angle(s.StartAngle) * s1.Degree
	span := s1.Angle(sweep) * s1.Degree
	eval := func(t float64) geometry.Position {
		th := (start + span*s1.Angle(t)).Radians()
		p := s.Center
		p.X += s.Radius.Value * math.Cos(th)
		p.Y += s.Radius.Value * math.Sin(th)
		return p
	}
	breaks := uniformBreaks(0, 1, 4)
	if sweep >= 360 {
		return parametric{eval: exact(eval, map[float64]geometry.Position{1: eval(0)}), breaks: breaks}
	}
	return parametric{eval: eval, breaks: breaks}
}

// geodesic interpolates along great circles; positions are lon/lat degrees.
func geodesic(pts []geometry.Position) parametric {
	parts := make([]parametric, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Y, a.X))
		pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Y, b.X))
		eval := func(t float64) geometry.Position {
			switch t {
			case 0:
				return a
			case 1:
				return b
			}
			ll := s2.LatLngFromPoint(s2.Interpolate(t, pa, pb))
			p := geometry.Position{X: ll.Lng.Degrees(), Y: ll.Lat.Degrees(), Dim: a.Dim}
			if a.Dim == 3 {
				p.Z = a.Z + (b.Z-a.Z)*t
			}
			return p
		}
		parts = append(parts, parametric{eval: eval, breaks: []float64{0, 1}})
	}
	return chain(parts)
}

func bspline(s *geometry.BSpline) parametric {
	lo, hi := s.ParameterRange()
	breaks := []float64{lo}
	for _, k := range s.Knots {
		if k.Value > lo && k.Value < hi && k.Value > breaks[len(breaks)-1] {
			mid := (breaks[len(breaks)-1] + k.Value) / 2
			breaks = append(breaks, mid, k.Value)
		}
	}
	breaks = append(breaks, (breaks[len(breaks)-1]+hi)/2, hi)
	if len(breaks) < 5 {
		breaks = uniformBreaks(lo, hi, max(4, len(s.Points)))
	}
	return parametric{eval: s.PointAt, breaks: breaks}
}

// cubicSpline builds the clamped cubic interpolant through the spline's
// positions, parametrised by cumulative chord length, with the normalised
// end vectors as end tangents.
func cubicSpline(s *geometry.CubicSpline) (parametric, error) {
	n := len(s.Points) - 1
	dim := s.Points[0].Dim
	ts := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		h := vec(s.Points[i]).Sub(vec(s.Points[i-1])).Norm()
		if h == 0 {
			return parametric{}, errors.Newf("cubic spline positions %d and %d coincide", i-1, i)
		}
		ts[i] = ts[i-1] + h
	}
	d0 := r3.Vector{X: s.VectorAtStart[0], Y: s.VectorAtStart[1]}
	dn := r3.Vector{X: s.VectorAtEnd[0], Y: s.VectorAtEnd[1]}
	if dim == 3 {
		d0.Z, dn.Z = s.VectorAtStart[2], s.VectorAtEnd[2]
	}
	if d0.Norm() > 0 {
		d0 = d0.Normalize()
	}
	if dn.Norm() > 0 {
		dn = dn.Normalize()
	}

	axis := func(get func(r3.Vector) float64) func(float64) float64 {
		ys := make([]float64, n+1)
		for i, p := range s.Points {
			ys[i] = get(vec(p))
		}
		return clampedSpline(ts, ys, get(d0), get(dn))
	}
	fx := axis(func(v r3.Vector) float64 { return v.X })
	fy := axis(func(v r3.Vector) float64 { return v.Y })
	fz := axis(func(v r3.Vector) float64 { return v.Z })

	eval := func(t float64) geometry.Position {
		p := geometry.Position{X: fx(t), Y: fy(t), Dim: dim}
		if dim == 3 {
			p.Z = fz(t)
		}
		return p
	}
	pinned := make(map[float64]geometry.Position, n+1)
	breaks := make([]float64, 0, 2*n+1)
	for i, t := range ts {
		pinned[t] = s.Points[i]
		if i > 0 {
			breaks = append(breaks, (ts[i-1]+t)/2)
		}
		breaks = append(breaks, t)
	}
	return parametric{eval: exact(eval, pinned), breaks: breaks}, nil
}

// clampedSpline returns the clamped cubic spline through (xs[i], ys[i])
// with first derivatives fp0 and fpn at the ends.
func clampedSpline(xs, ys []float64, fp0, fpn float64) func(float64) float64 {
	n := len(xs) - 1
	h := make([]float64, n)
	for i := 0; i < n; i++ {
		h[i] = xs[i+1] - xs[i]
	}
	alpha := make([]float64, n+1)
	alpha[0] = 3*(ys[1]-ys[0])/h[0] - 3*fp0
	alpha[n] = 3*fpn - 3*(ys[n]-ys[n-1])/h[n-1]
	for i := 1; i < n; i++ {
		alpha[i] = 3/h[i]*(ys[i+1]-ys[i]) - 3/h[i-1]*(ys[i]-ys[i-1])
	}

	l := make([]float64, n+1)
	mu := make([]float64, n+1)
	z := make([]float64, n+1)
	l[0] = 2 * h[0]
	mu[0] = 0.5
	z[0] = alpha[0] / l[0]
	for i := 1; i < n; i++ {
		l[i] = 2*(xs[i+1]-xs[i-1]) - h[i-1]*mu[i-1]
		mu[i] = h[i] / l[i]
		z[i] = (alpha[i] - h[i-1]*z[i-1]) / l[i]
	}
	l[n] = h[n-1] * (2 - mu[n-1])
	z[n] = (alpha[n] - h[n-1]*z[n-1]) / l[n]

	b := make([]float64, n)
	c := make([]float64, n+1)
	d := make([]float64, n)
	c[n] = z[n]
	for j := n - 1; j >= 0; j-- {
		c[j] = z[j] - mu[j]*c[j+1]
		b[j] = (ys[j+1]-ys[j])/h[j] - h[j]*(c[j+1]+2*c[j])/3
		d[j] = (c[j+1] - c[j]) / (3 * h[j])
	}

	return func(x float64) float64 {
		j := sortSearch(xs, x)
		dx := x - xs[j]
		return ys[j] + b[j]*dx + c[j]*dx*dx + d[j]*dx*dx*dx
	}
}

// sortSearch returns the interval index j with xs[j] <= x < xs[j+1],
// clamped to [0, len(xs)-2].
func sortSearch(xs []float64, x float64) int {
	j := 0
	for j < len(xs)-2 && x >= xs[j+1] {
		j++
	}
	return j
}
