package writer

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/linearize"
	"github.com/beetlebugorg/gml/internal/parser"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/stretchr/testify/require"
)

// must checks the error of a constructor call and returns its value:
// must(geometry.NewPoint(...))(t).
func must[T any](v T, err error) func(*testing.T) T {
	return func(t *testing.T) T {
		t.Helper()
		require.NoError(t, err)
		return v
	}
}

func encode(t *testing.T, enc *Encoder, g geometry.Geometry) string {
	t.Helper()
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf, enc.Dialect().Namespace())
	require.NoError(t, enc.Encode(w, g))
	return buf.String()
}

func decode(t *testing.T, d dialect.Dialect, doc string) geometry.Geometry {
	t.Helper()
	dec, err := parser.New(d, parser.DefaultOptions())
	require.NoError(t, err)
	cur := xmlstream.NewCursor(strings.NewReader(doc))
	require.NoError(t, cur.NextStart())
	g, err := dec.Decode(cur, nil)
	require.NoError(t, err, "decoding %s", doc)
	require.NoError(t, dec.ResolveLocalRefs())
	return g
}

func square(t *testing.T, x0, y0, size float64) *geometry.Ring {
	t.Helper()
	return must(geometry.NewLinearRing(geometry.Base{}, []geometry.Position{
		geometry.XY(x0, y0), geometry.XY(x0+size, y0), geometry.XY(x0+size, y0+size),
		geometry.XY(x0, y0+size), geometry.XY(x0, y0),
	}))(t)
}

func simpleGeometries(t *testing.T) map[string]geometry.Geometry {
	pt := must(geometry.NewPoint(geometry.Base{GID: "p1"}, geometry.XY(1.5, -2)))(t)
	pt3 := must(geometry.NewPoint(geometry.Base{}, geometry.XYZ(1, 2, 3)))(t)
	ls := must(geometry.NewLineString(geometry.Base{GID: "l1"}, []geometry.Position{
		geometry.XY(0, 0), geometry.XY(1, 1), geometry.XY(2, 0),
	}))(t)
	ls3 := must(geometry.NewLineString(geometry.Base{}, []geometry.Position{
		geometry.XYZ(0, 0, 1), geometry.XYZ(1, 1, 2),
	}))(t)
	poly := must(geometry.NewPolygon(geometry.Base{GID: "s1"}, square(t, 0, 0, 10), []*geometry.Ring{square(t, 2, 2, 1)}))(t)
	env := must(geometry.NewEnvelope(geometry.Base{}, geometry.XY(0, 0), geometry.XY(4, 5)))(t)
	pt2 := must(geometry.NewPoint(geometry.Base{}, geometry.XY(7, 8)))(t)
	mp := must(geometry.NewMulti(geometry.Base{}, geometry.KindMultiPoint, []geometry.Geometry{pt, pt2}))(t)
	mpoly := must(geometry.NewMulti(geometry.Base{}, geometry.KindMultiPolygon, []geometry.Geometry{poly}))(t)
	return map[string]geometry.Geometry{
		"point":        pt,
		"point 3d":     pt3,
		"line string":  ls,
		"line 3d":      ls3,
		"polygon":      poly,
		"envelope":     env,
		"multi point":  mp,
		"multipolygon": mpoly,
	}
}

func TestRoundTripSimple(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.GML2, dialect.GML31, dialect.GML32} {
		enc := must(New(d, DefaultOptions()))(t)
		for name, g := range simpleGeometries(t) {
			t.Run(d.String()+"/"+name, func(t *testing.T) {
				doc := encode(t, enc, g)
				got := decode(t, d, doc)
				if d == dialect.GML32 && g.Kind() == geometry.KindMultiPolygon {
					require.Equal(t, geometry.KindMultiSurface, got.Kind())
					require.True(t, geometry.Equal(g.(*geometry.Multi).Members[0], got.(*geometry.Multi).Members[0]))
					return
				}
				require.True(t, geometry.Equal(g, got), "round trip of %s", doc)
				if g.ID() != "" {
					require.Equal(t, g.ID(), got.ID())
				}
			})
		}
	}
}

func curvedGeometries(t *testing.T) map[string]geometry.Geometry {
	seg := must(geometry.NewLineStringSegment([]geometry.Position{geometry.XY(0, 0), geometry.XY(1, 0)}))(t)
	arc := must(geometry.NewArc(geometry.XY(1, 0), geometry.XY(2, 1), geometry.XY(3, 0)))(t)
	arcs := must(geometry.NewArcString([]geometry.Position{
		geometry.XY(3, 0), geometry.XY(4, -1), geometry.XY(5, 0), geometry.XY(6, 1), geometry.XY(7, 0),
	}))(t)
	bulge := must(geometry.NewArcStringByBulge(
		[]geometry.Position{geometry.XY(7, 0), geometry.XY(9, 0), geometry.XY(11, 0)},
		[]float64{0.5, 0.25}, [][]float64{{1}, {-1}}))(t)
	curve := must(geometry.NewCurve(geometry.Base{GID: "c1"}, []geometry.Segment{seg, arc, arcs, bulge}))(t)

	cc := must(geometry.NewCircleByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 2, UOM: "m"}, 45))(t)
	circle := must(geometry.NewCurve(geometry.Base{}, []geometry.Segment{cc}))(t)

	acp := must(geometry.NewArcByCenterPoint(geometry.XY(0, 0), geometry.Measure{Value: 1}, 0, 90))(t)
	geo := must(geometry.NewGeodesicString([]geometry.Position{acp.EndPosition(), geometry.XY(10, 20), geometry.XY(11, 21)}))(t)
	mixed := must(geometry.NewCurve(geometry.Base{}, []geometry.Segment{acp, geo}))(t)

	bez := must(geometry.NewBezier([]geometry.Position{geometry.XY(0, 0), geometry.XY(1, 2), geometry.XY(3, 2), geometry.XY(4, 0)}))(t)
	bs := must(geometry.NewBSpline(2, []geometry.Position{
		geometry.XY(4, 0), geometry.XY(5, 1), geometry.XY(6, 0),
	}, []geometry.Knot{{Value: 0, Multiplicity: 3, Weight: 1}, {Value: 1, Multiplicity: 3, Weight: 1}}))(t)
	bs.KnotType = "piecewiseBezier"
	cs := must(geometry.NewCubicSpline([]geometry.Position{geometry.XY(6, 0), geometry.XY(7, 1), geometry.XY(8, 0)},
		[]float64{1, 1}, []float64{1, -1}))(t)
	splines := must(geometry.NewCurve(geometry.Base{}, []geometry.Segment{bez, bs, cs}))(t)

	cl := must(geometry.NewClothoid(geometry.XY(0, 0), [][]float64{{1, 0}, {0, 1}}, 2, 0, 0.5))(t)
	clothoid := must(geometry.NewCurve(geometry.Base{}, []geometry.Segment{cl}))(t)

	oc := must(geometry.NewOrientableCurve(geometry.Base{}, curve, false))(t)
	comp := must(geometry.NewComposite(geometry.Base{}, geometry.KindCompositeCurve, []geometry.Geometry{
		must(geometry.NewLineString(geometry.Base{}, []geometry.Position{geometry.XY(0, 0), geometry.XY(1, 0)}))(t),
		must(geometry.NewLineString(geometry.Base{}, []geometry.Position{geometry.XY(1, 0), geometry.XY(1, 1)}))(t),
	}))(t)

	return map[string]geometry.Geometry{
		"arcs and bulges": curve,
		"circle":          circle,
		"centre and geo":  mixed,
		"splines":         splines,
		"clothoid":        clothoid,
		"orientable":      oc,
		"composite":       comp,
	}
}

func surfaceGeometries(t *testing.T) map[string]geometry.Geometry {
	tri := func(x float64) geometry.Patch {
		r := must(geometry.NewLinearRing(geometry.Base{}, []geometry.Position{
			geometry.XYZ(x, 0, 0), geometry.XYZ(x+1, 0, 0), geometry.XYZ(x, 1, 1), geometry.XYZ(x, 0, 0),
		}))(t)
		return must(geometry.NewTriangle(r))(t)
	}
	tsurf := must(geometry.NewSurface(geometry.Base{}, geometry.KindTriangulatedSurface, []geometry.Patch{tri(0), tri(2)}))(t)
	tin := must(geometry.NewTin(geometry.Base{}, []geometry.Patch{tri(0)}, geometry.TinParameters{
		StopLines: [][]*geometry.LineStringSegment{{
			must(geometry.NewLineStringSegment([]geometry.Position{geometry.XYZ(0, 0, 0), geometry.XYZ(1, 0, 0)}))(t),
		}},
		MaxLength:     geometry.Measure{Value: 100, UOM: "m"},
		ControlPoints: []geometry.Position{geometry.XYZ(0, 0, 0), geometry.XYZ(1, 0, 0), geometry.XYZ(0, 1, 1)},
	}))(t)
	cone := must(geometry.NewGriddedPatch(geometry.PatchCone, [][]geometry.Position{
		{geometry.XYZ(0, 0, 0), geometry.XYZ(1, 0, 0), geometry.XYZ(0, 1, 0)},
		{geometry.XYZ(0, 0, 1), geometry.XYZ(0.5, 0, 1), geometry.XYZ(0, 0.5, 1)},
	}))(t)
	gridded := must(geometry.NewSurface(geometry.Base{}, geometry.KindSurface, []geometry.Patch{cone}))(t)

	arcRing := must(geometry.NewRing(geometry.Base{}, []geometry.Geometry{
		must(geometry.NewCurve(geometry.Base{}, []geometry.Segment{
			must(geometry.NewArc(geometry.XY(0, 0), geometry.XY(1, 1), geometry.XY(2, 0)))(t),
			must(geometry.NewLineStringSegment([]geometry.Position{geometry.XY(2, 0), geometry.XY(0, 0)}))(t),
		}))(t),
	}))(t)
	curvedPatch := must(geometry.NewPolygonPatch(arcRing, nil))(t)
	curved := must(geometry.NewSurface(geometry.Base{}, geometry.KindSurface, []geometry.Patch{curvedPatch}))(t)

	face := func(pts ...geometry.Position) geometry.Geometry {
		r := must(geometry.NewLinearRing(geometry.Base{}, append(pts, pts[0])))(t)
		return must(geometry.NewPolygon(geometry.Base{}, r, nil))(t)
	}
	a, b, c, d := geometry.XYZ(0, 0, 0), geometry.XYZ(1, 0, 0), geometry.XYZ(0, 1, 0), geometry.XYZ(0, 0, 1)
	shell := must(geometry.NewComposite(geometry.Base{GID: "shell1"}, geometry.KindCompositeSurface, []geometry.Geometry{
		face(a, c, b), face(a, b, d), face(b, c, d), face(c, a, d),
	}))(t)
	solid := must(geometry.NewSolid(geometry.Base{GID: "solid1"}, shell, nil))(t)
	os := must(geometry.NewOrientableSurface(geometry.Base{}, face(a, b, c), false))(t)

	return map[string]geometry.Geometry{
		"triangulated": tsurf,
		"tin":          tin,
		"gridded":      gridded,
		"curved ring":  curved,
		"solid":        solid,
		"orientable":   os,
	}
}

func TestRoundTripCurved(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.GML31, dialect.GML32} {
		enc := must(New(d, DefaultOptions()))(t)
		all := curvedGeometries(t)
		for k, v := range surfaceGeometries(t) {
			all[k] = v
		}
		for name, g := range all {
			t.Run(d.String()+"/"+name, func(t *testing.T) {
				doc := encode(t, enc, g)
				got := decode(t, d, doc)
				require.True(t, geometry.Equal(g, got), "round trip of %s", doc)
			})
		}
	}
}

func TestGML2Downgrade(t *testing.T) {
	curved := curvedGeometries(t)
	surfaces := surfaceGeometries(t)

	t.Run("without strategy", func(t *testing.T) {
		enc := must(New(dialect.GML2, DefaultOptions()))(t)
		for _, g := range []geometry.Geometry{curved["arcs and bulges"], curved["circle"], surfaces["curved ring"], surfaces["gridded"]} {
			var buf bytes.Buffer
			err := enc.Encode(xmlstream.NewWriter(&buf, dialect.NamespaceGML), g)
			var unsupported *ErrUnsupported
			require.True(t, errors.As(err, &unsupported), "%v: got %v", g.Kind(), err)
			require.Equal(t, dialect.GML2, unsupported.Dialect)
			require.Zero(t, buf.Len(), "nothing is written on failure")
		}
	})

	t.Run("with strategy", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Strategy = linearize.NewSubdivision(linearize.Criterion{MaxError: 0.01, MaxPoints: 256}, nil)
		enc := must(New(dialect.GML2, opts))(t)

		got := decode(t, dialect.GML2, encode(t, enc, curved["arcs and bulges"]))
		require.Equal(t, geometry.KindLineString, got.Kind())
		require.Equal(t, "c1", got.ID())
		c := got.(*geometry.Curve)
		require.Greater(t, len(c.Segments[0].(*geometry.LineStringSegment).Points), 5)
		require.True(t, c.StartPosition().Coincident(geometry.XY(0, 0)))
		require.True(t, c.EndPosition().Coincident(geometry.XY(11, 0)))

		got = decode(t, dialect.GML2, encode(t, enc, surfaces["curved ring"]))
		require.Equal(t, geometry.KindPolygon, got.Kind())

		got = decode(t, dialect.GML2, encode(t, enc, curved["orientable"]))
		require.Equal(t, geometry.KindLineString, got.Kind())
		require.True(t, got.(*geometry.Curve).StartPosition().Coincident(geometry.XY(11, 0)))
	})

	t.Run("no element at all", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Strategy = linearize.NewSubdivision(linearize.DefaultCriterion(), nil)
		enc := must(New(dialect.GML2, opts))(t)
		for _, g := range []geometry.Geometry{surfaces["solid"], surfaces["tin"], surfaces["orientable"], curved["composite"]} {
			err := enc.Encode(xmlstream.NewWriter(&bytes.Buffer{}, dialect.NamespaceGML), g)
			var unsupported *ErrUnsupported
			require.True(t, errors.As(err, &unsupported), "%v: got %v", g.Kind(), err)
			require.Equal(t, g.Kind().String(), unsupported.Kind)
		}
	})
}

func TestGML2Coordinates(t *testing.T) {
	enc := must(New(dialect.GML2, DefaultOptions()))(t)
	ls := must(geometry.NewLineString(geometry.Base{GID: "r7"}, []geometry.Position{geometry.XY(1, 2), geometry.XY(3.25, -4)}))(t)
	doc := encode(t, enc, ls)
	require.Contains(t, doc, `gid="r7"`)
	require.Contains(t, doc, `<gml:coordinates decimal="." cs="," ts=" ">1,2 3.25,-4</gml:coordinates>`)
}

func TestCRSEmission(t *testing.T) {
	reg := crs.NewStaticRegistry()
	wgs := must(reg.Lookup("EPSG:4326"))(t)
	ring := must(geometry.NewLinearRing(geometry.Base{SRS: wgs}, []geometry.Position{
		geometry.XY(0, 0), geometry.XY(1, 0), geometry.XY(1, 1), geometry.XY(0, 0),
	}))(t)
	poly := must(geometry.NewPolygon(geometry.Base{SRS: wgs}, ring, nil))(t)
	mp := must(geometry.NewMulti(geometry.Base{SRS: wgs}, geometry.KindMultiSurface, []geometry.Geometry{poly}))(t)

	tests := []struct {
		dialect dialect.Dialect
		srsName string
	}{
		{dialect.GML2, `srsName="EPSG:4326"`},
		{dialect.GML31, `srsName="urn:ogc:def:crs:EPSG::4326"`},
		{dialect.GML32, `srsName="urn:ogc:def:crs:EPSG::4326"`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			enc := must(New(tt.dialect, DefaultOptions()))(t)
			doc := encode(t, enc, mp)
			require.Equal(t, 1, strings.Count(doc, "srsName="), doc)
			require.Contains(t, doc, tt.srsName)

			got := decode(t, tt.dialect, doc)
			require.True(t, got.CRS().Equal(wgs))
			require.True(t, got.(*geometry.Multi).Members[0].CRS().Equal(wgs))
		})
	}

	t.Run("inherited", func(t *testing.T) {
		enc := must(New(dialect.GML31, DefaultOptions()))(t)
		var buf bytes.Buffer
		require.NoError(t, enc.EncodeInherited(xmlstream.NewWriter(&buf, dialect.NamespaceGML), poly, wgs))
		require.NotContains(t, buf.String(), "srsName")
	})
}

func TestGeneratedIDs(t *testing.T) {
	n := 0
	opts := DefaultOptions()
	opts.IDGenerator = func() string {
		n++
		return "g" + strconv.Itoa(n)
	}
	pt := must(geometry.NewPoint(geometry.Base{}, geometry.XY(1, 2)))(t)
	named := must(geometry.NewPoint(geometry.Base{GID: "keep"}, geometry.XY(3, 4)))(t)
	mp := must(geometry.NewMulti(geometry.Base{}, geometry.KindMultiPoint, []geometry.Geometry{pt, named}))(t)

	enc := must(New(dialect.GML32, opts))(t)
	doc := encode(t, enc, mp)
	require.Contains(t, doc, `<gml:MultiPoint xmlns:gml="http://www.opengis.net/gml/3.2"`)
	require.Contains(t, doc, `gml:id="g1"`)
	require.Contains(t, doc, `gml:id="g2"`)
	require.Contains(t, doc, `gml:id="keep"`)

	t.Run("GML 3.1 does not generate", func(t *testing.T) {
		enc := must(New(dialect.GML31, opts))(t)
		doc := encode(t, enc, pt)
		require.NotContains(t, doc, "gml:id")
	})

	t.Run("default generator", func(t *testing.T) {
		enc := must(New(dialect.GML32, DefaultOptions()))(t)
		got := decode(t, dialect.GML32, encode(t, enc, pt))
		require.True(t, strings.HasPrefix(got.ID(), "GEOMETRY_"), got.ID())
		require.True(t, parser.ValidateID(got.ID()))
	})
}

func TestReferences(t *testing.T) {
	ref := must(geometry.NewReference("#c9", geometry.FamilyCurve))(t)
	mc := must(geometry.NewMulti(geometry.Base{}, geometry.KindMultiCurve, []geometry.Geometry{ref}))(t)

	enc := must(New(dialect.GML31, DefaultOptions()))(t)
	doc := encode(t, enc, mc)
	require.Contains(t, doc, `<gml:curveMember xlink:href="#c9"/>`)

	var unsupported *ErrUnsupported
	err := enc.Encode(xmlstream.NewWriter(&bytes.Buffer{}, dialect.NamespaceGML), ref)
	require.True(t, errors.As(err, &unsupported), "got %v", err)
	require.Equal(t, "Reference", unsupported.Kind)
}

func TestMultiPolygonIn32(t *testing.T) {
	poly := must(geometry.NewPolygon(geometry.Base{}, square(t, 0, 0, 1), nil))(t)
	mp := must(geometry.NewMulti(geometry.Base{}, geometry.KindMultiPolygon, []geometry.Geometry{poly}))(t)
	enc := must(New(dialect.GML32, DefaultOptions()))(t)
	doc := encode(t, enc, mp)
	require.Contains(t, doc, "<gml:MultiSurface")
	require.Contains(t, doc, "<gml:surfaceMember>")
	require.NotContains(t, doc, "polygonMember")
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	_, err := New(dialect.Dialect(9), DefaultOptions())
	require.Error(t, err)
}
