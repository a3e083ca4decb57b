package writer

import (
	"strconv"

	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/cockroachdb/errors"
)

// segment writes one curve segment inside gml:segments. GML 3.1.1 §10.2.
func (s *session) segment(seg geometry.Segment) error {
	switch v := seg.(type) {
	case *geometry.LineStringSegment:
		s.start("LineStringSegment")
		s.posList(v.Points)
	case *geometry.Arc:
		s.start("Arc")
		s.posList(v.Points[:])
	case *geometry.Circle:
		s.start("Circle")
		s.posList(v.Points[:])
	case *geometry.ArcString:
		s.start("ArcString")
		s.attr("", "numArc", strconv.Itoa((len(v.Points)-1)/2))
		s.posList(v.Points)
	case *geometry.ArcByBulge:
		s.start("ArcByBulge")
		s.bulges(&v.ArcStringByBulge)
	case *geometry.ArcStringByBulge:
		s.start("ArcStringByBulge")
		s.attr("", "numArc", strconv.Itoa(len(v.Points)-1))
		s.bulges(v)
	case *geometry.ArcByCenterPoint:
		s.start("ArcByCenterPoint")
		s.attr("", "numArc", "1")
		s.pos("pos", v.Center)
		s.measure("radius", v.Radius)
		s.measure("startAngle", geometry.Measure{Value: v.StartAngle, UOM: "deg"})
		s.measure("endAngle", geometry.Measure{Value: v.EndAngle, UOM: "deg"})
	case *geometry.CircleByCenterPoint:
		s.start("CircleByCenterPoint")
		s.attr("", "numArc", "1")
		s.pos("pos", v.Center)
		s.measure("radius", v.Radius)
		s.measure("startAngle", geometry.Measure{Value: v.StartAngle, UOM: "deg"})
	case *geometry.Geodesic:
		s.start("Geodesic")
		s.posList(v.Points)
	case *geometry.GeodesicString:
		s.start("GeodesicString")
		s.posList(v.Points)
	case *geometry.CubicSpline:
		s.start("CubicSpline")
		s.posList(v.Points)
		s.vector("vectorAtStart", v.VectorAtStart)
		s.vector("vectorAtEnd", v.VectorAtEnd)
	case *geometry.Bezier:
		s.start("Bezier")
		s.attr("", "interpolation", "polynomialSpline")
		s.spline(&v.BSpline)
	case *geometry.BSpline:
		s.start("BSpline")
		if v.Polynomial {
			s.attr("", "interpolation", "polynomialSpline")
		} else {
			s.attr("", "interpolation", "rationalSpline")
		}
		if v.KnotType != "" {
			s.attr("", "knotType", v.KnotType)
		}
		s.spline(v)
	case *geometry.Clothoid:
		s.start("Clothoid")
		s.clothoid(v)
	default:
		return errors.Newf("writer: unknown segment type %T", seg)
	}
	s.end()
	return nil
}

func (s *session) bulges(v *geometry.ArcStringByBulge) {
	s.posList(v.Points)
	for _, b := range v.Bulges {
		s.leaf("bulge", formatFloat(b))
	}
	for _, n := range v.Normals {
		s.vector("normal", n)
	}
}

func (s *session) spline(v *geometry.BSpline) {
	s.posList(v.Points)
	s.leaf("degree", strconv.Itoa(v.Degree))
	for _, k := range v.Knots {
		s.start("knot")
		s.start("Knot")
		s.leaf("value", formatFloat(k.Value))
		s.leaf("multiplicity", strconv.Itoa(k.Multiplicity))
		s.leaf("weight", formatFloat(k.Weight))
		s.end()
		s.end()
	}
}

func (s *session) clothoid(v *geometry.Clothoid) {
	s.start("refLocation")
	s.start("AffinePlacement")
	s.pos("location", v.Location)
	for _, d := range v.RefDirections {
		s.vector("refDirection", d)
	}
	s.leaf("inDimension", strconv.Itoa(v.InDimension))
	s.leaf("outDimension", strconv.Itoa(v.OutDimension))
	s.end()
	s.end()
	s.leaf("scaleFactor", formatFloat(v.ScaleFactor))
	s.leaf("startParameter", formatFloat(v.StartParameter))
	s.leaf("endParameter", formatFloat(v.EndParameter))
}

// patch writes one surface patch. GML 3.1.1 §10.5.
func (s *session) patch(p geometry.Patch, anc *crs.CRS) error {
	switch v := p.(type) {
	case *geometry.PolygonPatch:
		s.start("PolygonPatch")
		if err := s.boundaries3(v.Exterior, v.Interiors, anc); err != nil {
			return err
		}
	case *geometry.Triangle:
		s.start("Triangle")
		if err := s.boundaries3(v.Exterior, nil, anc); err != nil {
			return err
		}
	case *geometry.Rectangle:
		s.start("Rectangle")
		if err := s.boundaries3(v.Exterior, nil, anc); err != nil {
			return err
		}
	case *geometry.GriddedPatch:
		s.start(v.Kind.String())
		s.attr("", "horizontalCurveType", v.HorizontalInterpolation)
		s.attr("", "verticalCurveType", v.VerticalInterpolation)
		s.start("rows")
		for _, row := range v.Rows {
			s.start("Row")
			s.posList(row)
			s.end()
		}
		s.end()
		s.leaf("rows", strconv.Itoa(len(v.Rows)))
		s.leaf("columns", strconv.Itoa(len(v.Rows[0])))
	default:
		return errors.Newf("writer: unknown patch type %T", p)
	}
	s.end()
	return nil
}
