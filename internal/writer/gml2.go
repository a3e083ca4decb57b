package writer

import (
	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/linearize"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// GML 2.1.2 knows points, line strings, polygons, boxes and their
// aggregates. Curves and single patch surfaces are downgraded through the
// strategy; everything else has no GML 2 element.
var members2 = map[geometry.Kind][2]string{
	geometry.KindMultiPoint:      {"MultiPoint", "pointMember"},
	geometry.KindMultiCurve:      {"MultiLineString", "lineStringMember"},
	geometry.KindMultiLineString: {"MultiLineString", "lineStringMember"},
	geometry.KindMultiSurface:    {"MultiPolygon", "polygonMember"},
	geometry.KindMultiPolygon:    {"MultiPolygon", "polygonMember"},
	geometry.KindMultiGeometry:   {"MultiGeometry", "geometryMember"},
}

func encodeGML2(s *session, g geometry.Geometry, anc *crs.CRS) error {
	switch v := g.(type) {
	case *geometry.Reference:
		t, err := s.target(v)
		if err != nil {
			return err
		}
		return encodeGML2(s, t, anc)
	case *geometry.Point:
		s.open("Point", v, anc)
		s.coordinates([]geometry.Position{v.Pos})
		s.end()
	case *geometry.Curve, *geometry.OrientableCurve:
		pts, err := linearize.Positions(s.enc.strategy, v)
		if err != nil {
			return errors.Wrapf(err, "encoding %v as gml:LineString", v.Kind())
		}
		s.downgraded(v, "LineString")
		s.open("LineString", v, anc)
		s.coordinates(pts)
		s.end()
	case *geometry.Ring:
		return s.ring2(v, anc)
	case *geometry.Surface:
		return s.surface2(v, anc)
	case *geometry.Multi:
		names, ok := members2[v.Kind()]
		if !ok {
			return s.unsupported(v, "no GML 2 aggregate holds this member type")
		}
		inner := s.open(names[0], v, anc)
		for _, m := range v.Members {
			if err := s.property(names[1], m, inner); err != nil {
				return err
			}
		}
		s.end()
	case *geometry.Envelope:
		s.open("Box", v, anc)
		s.coordinates([]geometry.Position{v.Min, v.Max})
		s.end()
	case *geometry.OrientableSurface, *geometry.Solid, *geometry.Composite:
		return s.unsupported(g, "GML 2 has no element for it")
	default:
		return errors.Newf("writer: unknown geometry type %T", g)
	}
	return nil
}

// ring2 writes a gml:LinearRing, linearizing curved rings.
func (s *session) ring2(r *geometry.Ring, anc *crs.CRS) error {
	lr, err := linearize.Ring(s.enc.strategy, r)
	if err != nil {
		return errors.Wrapf(err, "encoding %v as gml:LinearRing", r.Kind())
	}
	if lr != r {
		s.downgraded(r, "LinearRing")
	}
	pts, _ := lr.Positions()
	s.open("LinearRing", r, anc)
	s.coordinates(pts)
	s.end()
	return nil
}

// surface2 writes a Polygon. A Surface made of one patch becomes the
// Polygon of that patch.
func (s *session) surface2(v *geometry.Surface, anc *crs.CRS) error {
	var exterior *geometry.Ring
	var interiors []*geometry.Ring
	switch {
	case v.Kind() == geometry.KindPolygon:
		exterior, interiors = v.Exterior(), v.Interiors()
	case v.Kind() == geometry.KindSurface && len(v.Patches) == 1:
		pp, ok := v.Patches[0].(*geometry.PolygonPatch)
		if !ok {
			var err error
			if pp, err = s.enc.strategy.Patch(v.Patches[0]); err != nil {
				return errors.Wrapf(err, "encoding %v as gml:Polygon", v.Kind())
			}
		}
		s.downgraded(v, "Polygon")
		exterior, interiors = pp.Exterior, pp.Interiors
	default:
		return s.unsupported(v, "GML 2 has no element for it")
	}

	inner := s.open("Polygon", v, anc)
	s.start("outerBoundaryIs")
	if err := s.ring2(exterior, inner); err != nil {
		return err
	}
	s.end()
	for _, r := range interiors {
		s.start("innerBoundaryIs")
		if err := s.ring2(r, inner); err != nil {
			return err
		}
		s.end()
	}
	s.end()
	return nil
}

func (s *session) downgraded(g geometry.Geometry, as string) {
	if g.Kind().String() == as {
		return
	}
	s.enc.log.WithFields(logrus.Fields{"kind": g.Kind().String(), "as": as, "id": g.ID()}).
		Debug("downgraded geometry")
}
