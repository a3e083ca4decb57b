package writer

import (
	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/cockroachdb/errors"
)

// Member property names of the aggregates in GML 3.1.1. GML 3.2.1 dropped
// MultiLineString and MultiPolygon; they are written as their generic
// counterparts there.
var members3 = map[geometry.Kind][2]string{
	geometry.KindMultiPoint:       {"MultiPoint", "pointMember"},
	geometry.KindMultiCurve:       {"MultiCurve", "curveMember"},
	geometry.KindMultiLineString:  {"MultiLineString", "lineStringMember"},
	geometry.KindMultiSurface:     {"MultiSurface", "surfaceMember"},
	geometry.KindMultiPolygon:     {"MultiPolygon", "polygonMember"},
	geometry.KindMultiSolid:       {"MultiSolid", "solidMember"},
	geometry.KindMultiGeometry:    {"MultiGeometry", "geometryMember"},
	geometry.KindCompositeCurve:   {"CompositeCurve", "curveMember"},
	geometry.KindCompositeSurface: {"CompositeSurface", "surfaceMember"},
	geometry.KindCompositeSolid:   {"CompositeSolid", "solidMember"},
	geometry.KindGeometricComplex: {"GeometricComplex", "element"},
}

func encodeGML3(s *session, g geometry.Geometry, anc *crs.CRS) error {
	switch v := g.(type) {
	case *geometry.Reference:
		t, err := s.target(v)
		if err != nil {
			return err
		}
		return encodeGML3(s, t, anc)
	case *geometry.Point:
		s.open("Point", v, anc)
		s.pos("pos", v.Pos)
		s.end()
	case *geometry.Curve:
		return s.curve3(v, anc)
	case *geometry.OrientableCurve:
		inner := s.open("OrientableCurve", v, anc)
		s.attr("", "orientation", orientation(v.Positive))
		if err := s.property("baseCurve", v.BaseCurve, inner); err != nil {
			return err
		}
		s.end()
	case *geometry.Ring:
		return s.ring3(v, anc)
	case *geometry.Surface:
		return s.surface3(v, anc)
	case *geometry.OrientableSurface:
		inner := s.open("OrientableSurface", v, anc)
		s.attr("", "orientation", orientation(v.Positive))
		if err := s.property("baseSurface", v.BaseSurface, inner); err != nil {
			return err
		}
		s.end()
	case *geometry.Solid:
		inner := s.open("Solid", v, anc)
		if err := s.shell("exterior", v.Exterior, inner); err != nil {
			return err
		}
		for _, r := range v.Interiors {
			if err := s.shell("interior", r, inner); err != nil {
				return err
			}
		}
		s.end()
	case *geometry.Composite:
		return s.aggregate3(v, v.Members, anc)
	case *geometry.Multi:
		return s.aggregate3(v, v.Members, anc)
	case *geometry.Envelope:
		// Envelopes carry no gml:id in either GML 3 version.
		s.start("Envelope")
		s.srs(v.CRS(), anc)
		s.pos("lowerCorner", v.Min)
		s.pos("upperCorner", v.Max)
		s.end()
	default:
		return errors.Newf("writer: unknown geometry type %T", g)
	}
	return nil
}

func (s *session) curve3(c *geometry.Curve, anc *crs.CRS) error {
	if c.Kind() == geometry.KindLineString {
		pts, _ := c.Positions()
		s.open("LineString", c, anc)
		s.posList(pts)
		s.end()
		return nil
	}
	s.open("Curve", c, anc)
	s.start("segments")
	for _, seg := range c.Segments {
		if err := s.segment(seg); err != nil {
			return err
		}
	}
	s.end()
	s.end()
	return nil
}

// ring3 writes LinearRing or Ring. GML 3.2.1 rings are not GML objects, so
// they carry neither gml:id nor srsName there.
func (s *session) ring3(r *geometry.Ring, anc *crs.CRS) error {
	local := "Ring"
	if r.Kind() == geometry.KindLinearRing {
		local = "LinearRing"
	}
	inner := anc
	if s.enc.dialect == dialect.GML32 {
		s.start(local)
	} else {
		inner = s.open(local, r, anc)
	}
	if pts, ok := r.Positions(); ok && r.Kind() == geometry.KindLinearRing {
		s.posList(pts)
		s.end()
		return nil
	}
	for _, m := range r.Members {
		if err := s.property("curveMember", m, inner); err != nil {
			return err
		}
	}
	s.end()
	return nil
}

// boundaries3 writes the exterior and interior rings of a polygon or
// polygon patch.
func (s *session) boundaries3(exterior *geometry.Ring, interiors []*geometry.Ring, anc *crs.CRS) error {
	s.start("exterior")
	if err := s.ring3(exterior, anc); err != nil {
		return err
	}
	s.end()
	for _, r := range interiors {
		s.start("interior")
		if err := s.ring3(r, anc); err != nil {
			return err
		}
		s.end()
	}
	return nil
}

// patchContainer returns the patch array element of a surface kind. GML
// 3.1.1 names it after the patch type, GML 3.2.1 always uses patches.
func (s *session) patchContainer(kind geometry.Kind) string {
	if s.enc.dialect == dialect.GML32 {
		return "patches"
	}
	switch kind {
	case geometry.KindPolyhedralSurface:
		return "polygonPatches"
	case geometry.KindTriangulatedSurface, geometry.KindTin:
		return "trianglePatches"
	}
	return "patches"
}

func (s *session) surface3(v *geometry.Surface, anc *crs.CRS) error {
	switch v.Kind() {
	case geometry.KindPolygon:
		inner := s.open("Polygon", v, anc)
		if err := s.boundaries3(v.Exterior(), v.Interiors(), inner); err != nil {
			return err
		}
		s.end()
		return nil
	case geometry.KindTin:
		return s.tin(v, anc)
	}
	inner := s.open(v.Kind().String(), v, anc)
	if err := s.patches(v, inner); err != nil {
		return err
	}
	s.end()
	return nil
}

func (s *session) patches(v *geometry.Surface, anc *crs.CRS) error {
	s.start(s.patchContainer(v.Kind()))
	for _, p := range v.Patches {
		if err := s.patch(p, anc); err != nil {
			return err
		}
	}
	s.end()
	return nil
}

// tin writes gml:Tin. GML 3.1.1 §10.5.12.
func (s *session) tin(v *geometry.Surface, anc *crs.CRS) error {
	inner := s.open("Tin", v, anc)
	if err := s.patches(v, inner); err != nil {
		return err
	}
	params := v.Tin
	if params == nil {
		params = &geometry.TinParameters{}
	}
	for _, lines := range []struct {
		local string
		sets  [][]*geometry.LineStringSegment
	}{{"stopLines", params.StopLines}, {"breakLines", params.BreakLines}} {
		for _, set := range lines.sets {
			s.start(lines.local)
			for _, seg := range set {
				if err := s.segment(seg); err != nil {
					return err
				}
			}
			s.end()
		}
	}
	if params.MaxLength != (geometry.Measure{}) {
		s.measure("maxLength", params.MaxLength)
	}
	s.start("controlPoint")
	s.posList(params.ControlPoints)
	s.end()
	s.end()
	return nil
}

// shell writes a solid boundary. GML 3.2.1 wraps it in gml:Shell; a
// CompositeSurface becomes the Shell itself, any other surface its single
// member.
func (s *session) shell(local string, g geometry.Geometry, anc *crs.CRS) error {
	if _, ok := g.(*geometry.Reference); ok || s.enc.dialect != dialect.GML32 {
		return s.property(local, g, anc)
	}
	s.start(local)
	if c, ok := g.(*geometry.Composite); ok && c.Kind() == geometry.KindCompositeSurface {
		inner := s.open("Shell", c, anc)
		for _, m := range c.Members {
			if err := s.property("surfaceMember", m, inner); err != nil {
				return err
			}
		}
	} else {
		s.start("Shell")
		s.id("")
		if err := s.property("surfaceMember", g, anc); err != nil {
			return err
		}
	}
	s.end()
	s.end()
	return nil
}

func (s *session) aggregate3(g geometry.Geometry, members []geometry.Geometry, anc *crs.CRS) error {
	kind := g.Kind()
	if s.enc.dialect == dialect.GML32 {
		switch kind {
		case geometry.KindMultiLineString:
			kind = geometry.KindMultiCurve
		case geometry.KindMultiPolygon:
			kind = geometry.KindMultiSurface
		}
	}
	names, ok := members3[kind]
	if !ok {
		return errors.Newf("writer: %v is not an aggregate", kind)
	}
	inner := s.open(names[0], g, anc)
	for _, m := range members {
		if err := s.property(names[1], m, inner); err != nil {
			return err
		}
	}
	s.end()
	return nil
}
