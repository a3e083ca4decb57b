package linearize

import (
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/cockroachdb/errors"
)

// Patch implements Strategy. Polygon patches keep their boundaries with
// curved ring members linearized; triangles and rectangles become polygon
// patches; gridded patches are replaced by their outline.
func (s *Subdivision) Patch(p geometry.Patch) (*geometry.PolygonPatch, error) {
	switch v := p.(type) {
	case *geometry.PolygonPatch:
		ext, err := Ring(s, v.Exterior)
		if err != nil {
			return nil, err
		}
		ints := make([]*geometry.Ring, len(v.Interiors))
		for i, r := range v.Interiors {
			if ints[i], err = Ring(s, r); err != nil {
				return nil, err
			}
		}
		return geometry.NewPolygonPatch(ext, ints)
	case *geometry.Triangle:
		return geometry.NewPolygonPatch(v.Exterior, nil)
	case *geometry.Rectangle:
		return geometry.NewPolygonPatch(v.Exterior, nil)
	case *geometry.GriddedPatch:
		ring, err := geometry.NewLinearRing(geometry.Base{}, v.Boundary())
		if err != nil {
			return nil, errors.Wrapf(err, "outlining %v", v.Kind)
		}
		return geometry.NewPolygonPatch(ring, nil)
	}
	return nil, errors.Newf("cannot linearize %v", p.PatchKind())
}

// Positions returns the linear positions of any curve-family geometry,
// following references and orientation. A curve that reaches itself
// through references is an error.
func Positions(s Strategy, g geometry.Geometry) ([]geometry.Position, error) {
	return positions(s, g, map[geometry.Geometry]bool{})
}

func positions(s Strategy, g geometry.Geometry, path map[geometry.Geometry]bool) ([]geometry.Position, error) {
	t := geometry.Unwrap(g)
	if t != nil {
		if path[t] {
			return nil, errors.Newf("%v %q contains itself through references", t.Kind(), t.ID())
		}
		path[t] = true
		defer delete(path, t)
	}
	switch c := t.(type) {
	case nil:
		return nil, errors.Newf("cannot linearize unresolved reference %q", g.ID())
	case *geometry.Curve:
		var pts []geometry.Position
		for _, seg := range c.Segments {
			ls, err := s.Segment(seg)
			if err != nil {
				return nil, err
			}
			pts = appendChained(pts, ls.Points)
		}
		return pts, nil
	case *geometry.OrientableCurve:
		pts, err := positions(s, c.BaseCurve, path)
		if err != nil || c.Positive {
			return pts, err
		}
		return geometry.Reversed(pts), nil
	case *geometry.Composite:
		return chainPositions(s, c.Members, path)
	case *geometry.Ring:
		return chainPositions(s, c.Members, path)
	default:
		return nil, errors.Newf("%v is not a curve", g.Kind())
	}
}

func chainPositions(s Strategy, ms []geometry.Geometry, path map[geometry.Geometry]bool) ([]geometry.Position, error) {
	var pts []geometry.Position
	for _, m := range ms {
		mp, err := positions(s, m, path)
		if err != nil {
			return nil, err
		}
		pts = appendChained(pts, mp)
	}
	return pts, nil
}

// Curve returns g as a LineString with the same identity and CRS.
func Curve(s Strategy, g geometry.Geometry) (*geometry.Curve, error) {
	pts, err := Positions(s, g)
	if err != nil {
		return nil, err
	}
	return geometry.NewLineString(geometry.Base{GID: g.ID(), SRS: g.CRS()}, pts)
}

// Ring returns r as a LinearRing. Linear rings are returned unchanged.
func Ring(s Strategy, r *geometry.Ring) (*geometry.Ring, error) {
	if r.Kind() == geometry.KindLinearRing {
		return r, nil
	}
	pts, err := Positions(s, r)
	if err != nil {
		return nil, err
	}
	// Computed end points may close within round-off only.
	if n := len(pts); n > 0 && pts[n-1].Coincident(pts[0]) {
		pts[n-1] = pts[0]
	}
	return geometry.NewLinearRing(r.Base, pts)
}

func appendChained(dst, src []geometry.Position) []geometry.Position {
	if len(dst) > 0 && len(src) > 0 && dst[len(dst)-1].Coincident(src[0]) {
		src = src[1:]
	}
	return append(dst, src...)
}
