package linearize

import (
	"io"
	"math"
	"testing"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func quiet() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func circleProbes(cx, cy, r float64, n int) []geometry.Position {
	out := make([]geometry.Position, n)
	for i := range out {
		th := 2 * math.Pi * float64(i) / float64(n)
		out[i] = geometry.XY(cx+r*math.Cos(th), cy+r*math.Sin(th))
	}
	return out
}

func TestCircleVerticesOnCircle(t *testing.T) {
	c, err := geometry.NewCircle(geometry.XY(6, 5), geometry.XY(5, 6), geometry.XY(4, 5))
	require.NoError(t, err)

	s := NewSubdivision(Criterion{MaxError: 1e-4, MaxPoints: 10000}, quiet())
	ls, err := s.Segment(c)
	require.NoError(t, err)
	require.True(t, ls.Points[0].Equal(ls.Points[len(ls.Points)-1]), "circle must close")

	for _, p := range ls.Points {
		require.InDelta(t, 1.0, math.Hypot(p.X-5, p.Y-5), 1e-9)
	}
	require.LessOrEqual(t, maxDeviation(ls.Points, circleProbes(5, 5, 1, 720)), 1e-4+1e-9)
}

func TestDeviationMonotoneInMaxPoints(t *testing.T) {
	arc, err := geometry.NewArc(geometry.XY(10, 0), geometry.XY(0, 10), geometry.XY(-10, 0))
	require.NoError(t, err)

	var probes []geometry.Position
	for i := 0; i <= 360; i++ {
		th := math.Pi * float64(i) / 360
		probes = append(probes, geometry.XY(10*math.Cos(th), 10*math.Sin(th)))
	}

	prev := math.Inf(1)
	for _, n := range []int{3, 5, 9, 17, 33, 65, 129} {
		s := NewSubdivision(Criterion{MaxPoints: n}, quiet())
		ls, err := s.Segment(arc)
		require.NoError(t, err)
		require.LessOrEqual(t, len(ls.Points), n)
		dev := maxDeviation(ls.Points, probes)
		require.LessOrEqual(t, dev, prev+1e-12, "max points %d", n)
		prev = dev
	}
}

func TestArcKeepsDefiningPositions(t *testing.T) {
	p0, p1, p2 := geometry.XY(0, 0), geometry.XY(1, 1), geometry.XY(2, 0)
	arc, err := geometry.NewArc(p0, p1, p2)
	require.NoError(t, err)

	ls, err := NewSubdivision(DefaultCriterion(), quiet()).Segment(arc)
	require.NoError(t, err)
	require.Equal(t, p0, ls.Points[0])
	require.Equal(t, p2, ls.Points[len(ls.Points)-1])
	require.Contains(t, ls.Points, p1)
}

func TestCollinearArc(t *testing.T) {
	arc, err := geometry.NewArc(geometry.XY(0, 0), geometry.XY(1, 1), geometry.XY(2, 2))
	require.NoError(t, err)
	ls, err := NewSubdivision(DefaultCriterion(), quiet()).Segment(arc)
	require.NoError(t, err)
	require.Len(t, ls.Points, 2)
}

func TestArcByCenterPoint(t *testing.T) {
	a, err := geometry.NewArcByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 2, UOM: "m"}, 0, 180)
	require.NoError(t, err)
	ls, err := NewSubdivision(Criterion{MaxError: 1e-3, MaxPoints: 1000}, quiet()).Segment(a)
	require.NoError(t, err)

	require.True(t, ls.Points[0].Coincident(geometry.XY(2, 0)))
	require.True(t, ls.Points[len(ls.Points)-1].Coincident(geometry.XY(-2, 0)))
	for _, p := range ls.Points {
		require.InDelta(t, 2.0, math.Hypot(p.X, p.Y), 1e-9)
		require.GreaterOrEqual(t, p.Y, -1e-9, "counter-clockwise from 0 to 180 stays in the upper half")
	}
}

func TestPointCapIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	c, err := geometry.NewCircleByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 100}, 0)
	require.NoError(t, err)

	ls, err := NewSubdivision(Criterion{MaxError: 1e-9, MaxPoints: 16}, log).Segment(c)
	require.NoError(t, err)
	require.Len(t, ls.Points, 16)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPointCapBelowDefiningPositions(t *testing.T) {
	c, err := geometry.NewCircleByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 1}, 0)
	require.NoError(t, err)
	arcs, err := geometry.NewArcString([]geometry.Position{
		geometry.XY(0, 0), geometry.XY(1, 1), geometry.XY(2, 0), geometry.XY(3, -1), geometry.XY(4, 0),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		seg  geometry.Segment
		want int
		last geometry.Position
	}{
		{"circle", c, 5, c.PointAtAngle(0)},
		{"arc string", arcs, 5, geometry.XY(4, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := test.NewNullLogger()
			ls, err := NewSubdivision(Criterion{MaxError: 1e-9, MaxPoints: 3}, log).Segment(tt.seg)
			require.NoError(t, err)
			require.Len(t, ls.Points, tt.want)
			require.Equal(t, tt.last, ls.Points[len(ls.Points)-1])
			require.NotNil(t, hook.LastEntry())
			require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		})
	}
}

func TestSplines(t *testing.T) {
	s := NewSubdivision(Criterion{MaxError: 1e-4, MaxPoints: 2000}, quiet())

	bz, err := geometry.NewBezier([]geometry.Position{geometry.XY(0, 0), geometry.XY(1, 2), geometry.XY(2, -2), geometry.XY(3, 0)})
	require.NoError(t, err)
	ls, err := s.Segment(bz)
	require.NoError(t, err)
	require.Greater(t, len(ls.Points), 4, "symmetric S curve must be refined")
	require.True(t, ls.Points[0].Coincident(geometry.XY(0, 0)))
	require.True(t, ls.Points[len(ls.Points)-1].Coincident(geometry.XY(3, 0)))

	cs, err := geometry.NewCubicSpline(
		[]geometry.Position{geometry.XY(0, 0), geometry.XY(1, 1), geometry.XY(2, 0)},
		[]float64{1, 1}, []float64{1, -1})
	require.NoError(t, err)
	ls, err = s.Segment(cs)
	require.NoError(t, err)
	require.Contains(t, ls.Points, geometry.XY(1, 1))
	require.Equal(t, geometry.XY(2, 0), ls.Points[len(ls.Points)-1])

	cl, err := geometry.NewClothoid(geometry.XY(0, 0), [][]float64{{1, 0}, {0, 1}}, 1, 0, 1)
	require.NoError(t, err)
	ls, err = s.Segment(cl)
	require.NoError(t, err)
	require.True(t, ls.Points[0].Coincident(geometry.XY(0, 0)))
}

func TestGeodesic(t *testing.T) {
	g, err := geometry.NewGeodesic(geometry.XY(0, 0), geometry.XY(90, 0))
	require.NoError(t, err)
	ls, err := NewSubdivision(Criterion{MaxError: 1e-6, MaxPoints: 100}, quiet()).Segment(g)
	require.NoError(t, err)
	for _, p := range ls.Points {
		require.InDelta(t, 0, p.Y, 1e-9, "equator is a great circle")
	}
}

func TestRingAndPatch(t *testing.T) {
	s := NewSubdivision(Criterion{MaxError: 1e-3, MaxPoints: 500}, quiet())
	circle, err := geometry.NewCircle(geometry.XY(1, 0), geometry.XY(0, 1), geometry.XY(-1, 0))
	require.NoError(t, err)
	curve, err := geometry.NewCurve(geometry.Base{}, []geometry.Segment{circle})
	require.NoError(t, err)
	ring, err := geometry.NewRing(geometry.Base{GID: "r"}, []geometry.Geometry{curve})
	require.NoError(t, err)

	lr, err := Ring(s, ring)
	require.NoError(t, err)
	require.Equal(t, geometry.KindLinearRing, lr.Kind())

	patch, err := geometry.NewPolygonPatch(ring, nil)
	require.NoError(t, err)
	pp, err := s.Patch(patch)
	require.NoError(t, err)
	require.Equal(t, geometry.KindLinearRing, pp.Exterior.Kind())

	grid, err := geometry.NewGriddedPatch(geometry.PatchCone, [][]geometry.Position{
		{geometry.XYZ(0, 0, 0), geometry.XYZ(1, 0, 0)},
		{geometry.XYZ(0, 0, 1), geometry.XYZ(1, 0, 1)},
	})
	require.NoError(t, err)
	pp, err = s.Patch(grid)
	require.NoError(t, err)
	pts, _ := pp.Exterior.Positions()
	require.Len(t, pts, 5)

	// The computed end of the lower half closes onto the first position.
	upper, err := geometry.NewArcByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 3}, 0, 180)
	require.NoError(t, err)
	lower, err := geometry.NewArcByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 3}, 180, 360)
	require.NoError(t, err)
	halves, err := geometry.NewCurve(geometry.Base{}, []geometry.Segment{upper, lower})
	require.NoError(t, err)
	round, err := geometry.NewRing(geometry.Base{}, []geometry.Geometry{halves})
	require.NoError(t, err)
	lr, err = Ring(s, round)
	require.NoError(t, err)
	pts, _ = lr.Positions()
	require.Equal(t, pts[0], pts[len(pts)-1])
}

func TestPositionsReferenceCycle(t *testing.T) {
	ref, err := geometry.NewReference("#loop", geometry.FamilyCurve)
	require.NoError(t, err)
	loop, err := geometry.NewComposite(geometry.Base{GID: "loop"}, geometry.KindCompositeCurve, []geometry.Geometry{ref})
	require.NoError(t, err)
	require.NoError(t, ref.Bind(loop))

	_, err = Positions(NewSubdivision(DefaultCriterion(), quiet()), loop)
	require.Error(t, err)
	require.Contains(t, err.Error(), "contains itself")
}
