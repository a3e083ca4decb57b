package geometry

import (
	"fmt"
	"math"
)

// Segment is one piece of a Curve. Each variant stores the defining
// parameters of its interpolation; the linearize package turns them into
// positions.
type Segment interface {
	SegmentKind() SegmentKind
	Dimension() int
	StartPosition() Position
	EndPosition() Position
}

// LineStringSegment is linear interpolation between two or more positions.
type LineStringSegment struct {
	Points []Position
}

// NewLineStringSegment requires at least two positions of equal dimension.
func NewLineStringSegment(pts []Position) (*LineStringSegment, error) {
	if err := checkControlPoints(SegmentLineString, pts, 2); err != nil {
		return nil, err
	}
	return &LineStringSegment{Points: pts}, nil
}

func (s *LineStringSegment) SegmentKind() SegmentKind { return SegmentLineString }
func (s *LineStringSegment) Dimension() int           { return s.Points[0].Dim }
func (s *LineStringSegment) StartPosition() Position  { return s.Points[0] }
func (s *LineStringSegment) EndPosition() Position    { return s.Points[len(s.Points)-1] }

// Arc is a circular arc through three positions.
type Arc struct {
	Points [3]Position
}

func NewArc(p0, p1, p2 Position) (*Arc, error) {
	if err := checkControlPoints(SegmentArc, []Position{p0, p1, p2}, 3); err != nil {
		return nil, err
	}
	return &Arc{Points: [3]Position{p0, p1, p2}}, nil
}

func (s *Arc) SegmentKind() SegmentKind { return SegmentArc }
func (s *Arc) Dimension() int           { return s.Points[0].Dim }
func (s *Arc) StartPosition() Position  { return s.Points[0] }
func (s *Arc) EndPosition() Position    { return s.Points[2] }

// Circle is the full circle through three positions. It starts and ends at
// the first one.
type Circle struct {
	Points [3]Position
}

func NewCircle(p0, p1, p2 Position) (*Circle, error) {
	if err := checkControlPoints(SegmentCircle, []Position{p0, p1, p2}, 3); err != nil {
		return nil, err
	}
	return &Circle{Points: [3]Position{p0, p1, p2}}, nil
}

func (s *Circle) SegmentKind() SegmentKind { return SegmentCircle }
func (s *Circle) Dimension() int           { return s.Points[0].Dim }
func (s *Circle) StartPosition() Position  { return s.Points[0] }
func (s *Circle) EndPosition() Position    { return s.Points[0] }

// ArcString is a chain of arcs sharing end points: 2n+1 positions for n arcs.
type ArcString struct {
	Points []Position
}

func NewArcString(pts []Position) (*ArcString, error) {
	if err := checkControlPoints(SegmentArcString, pts, 3); err != nil {
		return nil, err
	}
	if len(pts)%2 == 0 {
		return nil, &ErrInvalidGeometry{
			Reason: fmt.Sprintf("ArcString needs an odd number of positions, got %d", len(pts)),
		}
	}
	return &ArcString{Points: pts}, nil
}

func (s *ArcString) SegmentKind() SegmentKind { return SegmentArcString }
func (s *ArcString) Dimension() int           { return s.Points[0].Dim }
func (s *ArcString) StartPosition() Position  { return s.Points[0] }
func (s *ArcString) EndPosition() Position    { return s.Points[len(s.Points)-1] }

// Arcs returns the arcs of the string in order.
func (s *ArcString) Arcs() []*Arc {
	arcs := make([]*Arc, 0, len(s.Points)/2)
	for i := 0; i+2 < len(s.Points); i += 2 {
		arcs = append(arcs, &Arc{Points: [3]Position{s.Points[i], s.Points[i+1], s.Points[i+2]}})
	}
	return arcs
}

// ArcStringByBulge is a chain of arcs each given by its chord and a bulge.
// The midpoint of arc i is the chord midpoint offset by Bulges[i] times
// Normals[i]. In 2D a normal has one component: its sign selects the left
// (+) or right (-) side of the chord and its magnitude scales the unit
// perpendicular. In 3D a normal is a vector of length 3.
type ArcStringByBulge struct {
	Points  []Position
	Bulges  []float64
	Normals [][]float64
}

func NewArcStringByBulge(pts []Position, bulges []float64, normals [][]float64) (*ArcStringByBulge, error) {
	if err := checkControlPoints(SegmentArcStringByBulge, pts, 2); err != nil {
		return nil, err
	}
	if len(bulges) != len(pts)-1 || len(normals) != len(pts)-1 {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf(
			"ArcStringByBulge with %d positions needs %d bulges and normals, got %d and %d",
			len(pts), len(pts)-1, len(bulges), len(normals))}
	}
	want := pts[0].Dim - 1
	for i, n := range normals {
		if len(n) != want {
			return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf(
				"normal %d has %d components, expected %d", i, len(n), want)}
		}
	}
	return &ArcStringByBulge{Points: pts, Bulges: bulges, Normals: normals}, nil
}

func (s *ArcStringByBulge) SegmentKind() SegmentKind { return SegmentArcStringByBulge }
func (s *ArcStringByBulge) Dimension() int           { return s.Points[0].Dim }
func (s *ArcStringByBulge) StartPosition() Position  { return s.Points[0] }
func (s *ArcStringByBulge) EndPosition() Position    { return s.Points[len(s.Points)-1] }

// Midpoint returns the on-arc midpoint of arc i.
func (s *ArcStringByBulge) Midpoint(i int) Position {
	a, b := s.Points[i], s.Points[i+1]
	mid := Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2, Dim: a.Dim}
	n := s.Normals[i]
	if a.Dim == 2 {
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			return mid
		}
		off := s.Bulges[i] * n[0]
		mid.X += -dy / l * off
		mid.Y += dx / l * off
		return mid
	}
	mid.X += s.Bulges[i] * n[0]
	mid.Y += s.Bulges[i] * n[1]
	mid.Z += s.Bulges[i] * n[2]
	return mid
}

// ArcByBulge is an ArcStringByBulge with exactly one arc.
type ArcByBulge struct {
	ArcStringByBulge
}

func NewArcByBulge(p0, p1 Position, bulge float64, normal []float64) (*ArcByBulge, error) {
	s, err := NewArcStringByBulge([]Position{p0, p1}, []float64{bulge}, [][]float64{normal})
	if err != nil {
		return nil, err
	}
	return &ArcByBulge{ArcStringByBulge: *s}, nil
}

func (s *ArcByBulge) SegmentKind() SegmentKind { return SegmentArcByBulge }

// Measure is a value with a unit of measure.
type Measure struct {
	Value float64
	UOM   string
}

// ArcByCenterPoint is a circular arc given by centre, radius and bearings.
// Angles are in degrees, measured counter-clockwise from the positive x
// axis; the arc runs counter-clockwise from StartAngle to EndAngle.
type ArcByCenterPoint struct {
	Center     Position
	Radius     Measure
	StartAngle float64
	EndAngle   float64
}

func NewArcByCenterPoint(center Position, radius Measure, start, end float64) (*ArcByCenterPoint, error) {
	if err := checkControlPoints(SegmentArcByCenterPoint, []Position{center}, 1); err != nil {
		return nil, err
	}
	if !(radius.Value > 0) {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf("radius must be positive, got %g", radius.Value)}
	}
	return &ArcByCenterPoint{Center: center, Radius: radius, StartAngle: start, EndAngle: end}, nil
}

func (s *ArcByCenterPoint) SegmentKind() SegmentKind { return SegmentArcByCenterPoint }
func (s *ArcByCenterPoint) Dimension() int           { return s.Center.Dim }
func (s *ArcByCenterPoint) StartPosition() Position  { return s.PointAtAngle(s.StartAngle) }
func (s *ArcByCenterPoint) EndPosition() Position    { return s.PointAtAngle(s.EndAngle) }

// Sweep returns the counter-clockwise sweep in degrees, in (0, 360].
func (s *ArcByCenterPoint) Sweep() float64 {
	sweep := math.Mod(s.EndAngle-s.StartAngle, 360)
	if sweep <= 0 {
		sweep += 360
	}
	return sweep
}

// PointAtAngle returns the position on the circle at the bearing deg.
// Bearings that differ by whole turns give identical positions.
func (s *ArcByCenterPoint) PointAtAngle(deg float64) Position {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	rad := deg * math.Pi / 180
	p := s.Center
	p.X += s.Radius.Value * math.Cos(rad)
	p.Y += s.Radius.Value * math.Sin(rad)
	return p
}

// CircleByCenterPoint is the full circle starting and ending at StartAngle.
type CircleByCenterPoint struct {
	ArcByCenterPoint
}

func NewCircleByCenterPoint(center Position, radius Measure, start float64) (*CircleByCenterPoint, error) {
	a, err := NewArcByCenterPoint(center, radius, start, start)
	if err != nil {
		return nil, err
	}
	return &CircleByCenterPoint{ArcByCenterPoint: *a}, nil
}

func (s *CircleByCenterPoint) SegmentKind() SegmentKind { return SegmentCircleByCenterPoint }
func (s *CircleByCenterPoint) EndPosition() Position    { return s.StartPosition() }
func (s *CircleByCenterPoint) Sweep() float64           { return 360 }

// GeodesicString interpolates along great circles between consecutive
// positions, which are read as longitude/latitude in degrees.
type GeodesicString struct {
	Points []Position
}

func NewGeodesicString(pts []Position) (*GeodesicString, error) {
	if err := checkControlPoints(SegmentGeodesicString, pts, 2); err != nil {
		return nil, err
	}
	return &GeodesicString{Points: pts}, nil
}

func (s *GeodesicString) SegmentKind() SegmentKind { return SegmentGeodesicString }
func (s *GeodesicString) Dimension() int           { return s.Points[0].Dim }
func (s *GeodesicString) StartPosition() Position  { return s.Points[0] }
func (s *GeodesicString) EndPosition() Position    { return s.Points[len(s.Points)-1] }

// Geodesic is a GeodesicString with exactly two positions.
type Geodesic struct {
	GeodesicString
}

func NewGeodesic(p0, p1 Position) (*Geodesic, error) {
	s, err := NewGeodesicString([]Position{p0, p1})
	if err != nil {
		return nil, err
	}
	return &Geodesic{GeodesicString: *s}, nil
}

func (s *Geodesic) SegmentKind() SegmentKind { return SegmentGeodesic }

// CubicSpline interpolates its positions with a clamped cubic spline whose
// end tangents are VectorAtStart and VectorAtEnd.
type CubicSpline struct {
	Points        []Position
	VectorAtStart []float64
	VectorAtEnd   []float64
}

func NewCubicSpline(pts []Position, atStart, atEnd []float64) (*CubicSpline, error) {
	if err := checkControlPoints(SegmentCubicSpline, pts, 2); err != nil {
		return nil, err
	}
	if len(atStart) != pts[0].Dim || len(atEnd) != pts[0].Dim {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf(
			"CubicSpline tangents must have %d components", pts[0].Dim)}
	}
	return &CubicSpline{Points: pts, VectorAtStart: atStart, VectorAtEnd: atEnd}, nil
}

func (s *CubicSpline) SegmentKind() SegmentKind { return SegmentCubicSpline }
func (s *CubicSpline) Dimension() int           { return s.Points[0].Dim }
func (s *CubicSpline) StartPosition() Position  { return s.Points[0] }
func (s *CubicSpline) EndPosition() Position    { return s.Points[len(s.Points)-1] }

func checkControlPoints(kind SegmentKind, pts []Position, min int) error {
	if len(pts) < min {
		return &ErrInvalidGeometry{Reason: fmt.Sprintf(
			"%v needs at least %d positions, got %d", kind, min, len(pts))}
	}
	if _, err := positionsDimension(pts); err != nil {
		return err
	}
	return nil
}
