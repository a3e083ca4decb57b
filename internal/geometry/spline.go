package geometry

import (
	"fmt"
	"math"
)

// Knot is one entry of a spline knot vector.
type Knot struct {
	Value        float64
	Multiplicity int
	Weight       float64
}

// BSpline is a polynomial B-spline with an explicit knot vector. Knot
// weights are kept for output but evaluation is non-rational.
type BSpline struct {
	Degree     int
	Points     []Position
	Knots      []Knot
	Polynomial bool
	KnotType   string

	expanded []float64
}

func NewBSpline(degree int, pts []Position, knots []Knot) (*BSpline, error) {
	s := &BSpline{Degree: degree, Points: pts, Knots: knots, Polynomial: true}
	if err := s.init(SegmentBSpline); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BSpline) init(kind SegmentKind) error {
	if s.Degree < 1 {
		return &ErrInvalidGeometry{Reason: fmt.Sprintf("%v degree must be positive, got %d", kind, s.Degree)}
	}
	if err := checkControlPoints(kind, s.Points, s.Degree+1); err != nil {
		return err
	}
	var expanded []float64
	for i, k := range s.Knots {
		if k.Multiplicity < 1 {
			return &ErrInvalidGeometry{Reason: fmt.Sprintf("knot %d has multiplicity %d", i, k.Multiplicity)}
		}
		if len(expanded) > 0 && k.Value < expanded[len(expanded)-1] {
			return &ErrInvalidGeometry{Reason: fmt.Sprintf("knot %d decreases", i)}
		}
		for j := 0; j < k.Multiplicity; j++ {
			expanded = append(expanded, k.Value)
		}
	}
	if want := len(s.Points) + s.Degree + 1; len(expanded) != want {
		return &ErrInvalidGeometry{Reason: fmt.Sprintf(
			"%v with %d positions and degree %d needs %d knots, got %d",
			kind, len(s.Points), s.Degree, want, len(expanded))}
	}
	s.expanded = expanded
	return nil
}

func (s *BSpline) SegmentKind() SegmentKind { return SegmentBSpline }
func (s *BSpline) Dimension() int           { return s.Points[0].Dim }

func (s *BSpline) StartPosition() Position {
	start, _ := s.ParameterRange()
	return s.PointAt(start)
}

func (s *BSpline) EndPosition() Position {
	_, end := s.ParameterRange()
	return s.PointAt(end)
}

// ParameterRange returns the valid domain [knot[p], knot[n]].
func (s *BSpline) ParameterRange() (float64, float64) {
	return s.expanded[s.Degree], s.expanded[len(s.Points)]
}

// PointAt evaluates the spline at u with de Boor's algorithm.
func (s *BSpline) PointAt(u float64) Position {
	p, n, t := s.Degree, len(s.Points), s.expanded
	lo, hi := s.ParameterRange()
	u = math.Max(lo, math.Min(hi, u))

	k := p
	for k < n-1 && u >= t[k+1] {
		k++
	}
	d := make([]Position, p+1)
	for j := 0; j <= p; j++ {
		d[j] = s.Points[j+k-p]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			den := t[j+1+k-r] - t[j+k-p]
			alpha := 0.0
			if den != 0 {
				alpha = (u - t[j+k-p]) / den
			}
			d[j] = lerp(d[j-1], d[j], alpha)
		}
	}
	return d[p]
}

// Bezier is a single polynomial Bezier span of degree len(Points)-1. It is
// stored as a B-spline with two knots.
type Bezier struct {
	BSpline
}

func NewBezier(pts []Position) (*Bezier, error) {
	if len(pts) < 2 {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf("Bezier needs at least 2 positions, got %d", len(pts))}
	}
	deg := len(pts) - 1
	b := &Bezier{BSpline{
		Degree:     deg,
		Points:     pts,
		Knots:      []Knot{{Value: 0, Multiplicity: deg + 1, Weight: 1}, {Value: 1, Multiplicity: deg + 1, Weight: 1}},
		Polynomial: true,
		KnotType:   "polynomialSpline",
	}}
	if err := b.init(SegmentBezier); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Bezier) SegmentKind() SegmentKind { return SegmentBezier }
func (s *Bezier) StartPosition() Position  { return s.Points[0] }
func (s *Bezier) EndPosition() Position    { return s.Points[len(s.Points)-1] }

// PointAt evaluates the curve at t in [0,1] with de Casteljau's algorithm.
func (s *Bezier) PointAt(t float64) Position {
	d := make([]Position, len(s.Points))
	copy(d, s.Points)
	for r := 1; r < len(d); r++ {
		for i := 0; i < len(d)-r; i++ {
			d[i] = lerp(d[i], d[i+1], t)
		}
	}
	return d[0]
}

// Clothoid is an Euler spiral placed in the plane spanned by the first two
// reference directions at Location. Position at parameter t is
//
//	Location + A*sqrt(pi)*(C(t)*RefDirections[0] + S(t)*RefDirections[1])
//
// where A is ScaleFactor and C, S are the Fresnel integrals.
type Clothoid struct {
	Location       Position
	RefDirections  [][]float64
	InDimension    int
	OutDimension   int
	ScaleFactor    float64
	StartParameter float64
	EndParameter   float64
}

func NewClothoid(loc Position, dirs [][]float64, scale, start, end float64) (*Clothoid, error) {
	if err := checkControlPoints(SegmentClothoid, []Position{loc}, 1); err != nil {
		return nil, err
	}
	if len(dirs) < 2 {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf("Clothoid needs 2 reference directions, got %d", len(dirs))}
	}
	for i, d := range dirs {
		if len(d) != loc.Dim {
			return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf(
				"reference direction %d has %d components, expected %d", i, len(d), loc.Dim)}
		}
	}
	if scale == 0 {
		return nil, &ErrInvalidGeometry{Reason: "Clothoid scale factor must not be zero"}
	}
	return &Clothoid{
		Location:       loc,
		RefDirections:  dirs,
		InDimension:    len(dirs),
		OutDimension:   loc.Dim,
		ScaleFactor:    scale,
		StartParameter: start,
		EndParameter:   end,
	}, nil
}

func (s *Clothoid) SegmentKind() SegmentKind { return SegmentClothoid }
func (s *Clothoid) Dimension() int           { return s.Location.Dim }
func (s *Clothoid) StartPosition() Position  { return s.PointAt(s.StartParameter) }
func (s *Clothoid) EndPosition() Position    { return s.PointAt(s.EndParameter) }

// PointAt evaluates the spiral at parameter t.
func (s *Clothoid) PointAt(t float64) Position {
	c, sn := Fresnel(t)
	k := s.ScaleFactor * math.Sqrt(math.Pi)
	e0, e1 := s.RefDirections[0], s.RefDirections[1]
	p := s.Location
	p.X += k * (c*e0[0] + sn*e1[0])
	p.Y += k * (c*e0[1] + sn*e1[1])
	if p.Dim == 3 {
		p.Z += k * (c*e0[2] + sn*e1[2])
	}
	return p
}

// Fresnel returns C(t) and S(t), the integrals of cos(pi*u*u/2) and
// sin(pi*u*u/2) from 0 to t, by composite Simpson's rule.
func Fresnel(t float64) (float64, float64) {
	if t == 0 {
		return 0, 0
	}
	n := int(math.Ceil(math.Abs(t)*64)) * 2
	if n < 32 {
		n = 32
	}
	h := t / float64(n)
	var c, s float64
	for i := 0; i <= n; i++ {
		u := float64(i) * h
		w := 2.0
		switch {
		case i == 0 || i == n:
			w = 1
		case i%2 == 1:
			w = 4
		}
		arg := math.Pi * u * u / 2
		c += w * math.Cos(arg)
		s += w * math.Sin(arg)
	}
	return c * h / 3, s * h / 3
}

func lerp(a, b Position, t float64) Position {
	return Position{
		X:   a.X + (b.X-a.X)*t,
		Y:   a.Y + (b.Y-a.Y)*t,
		Z:   a.Z + (b.Z-a.Z)*t,
		Dim: a.Dim,
	}
}
