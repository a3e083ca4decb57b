package parser

import (
	"encoding/xml"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/xmlstream"
)

// point reads gml:Point. GML 2 allows coord or coordinates, GML 3 adds pos.
func (d *Decoder) point(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	pts, err := d.readPositions(cur, f)
	if err != nil {
		return nil, err
	}
	if len(pts) != 1 {
		return nil, d.malformed(cur, "Point", "needs exactly one position, got %d", len(pts))
	}
	return geometry.NewPoint(b, pts[0])
}

// lineString reads gml:LineString.
func (d *Decoder) lineString(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	pts, err := d.readPositions(cur, f)
	if err != nil {
		return nil, err
	}
	return geometry.NewLineString(b, pts)
}

// linearRing reads gml:LinearRing: at least four positions, closed.
func (d *Decoder) linearRing(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	pts, err := d.readPositions(cur, f)
	if err != nil {
		return nil, err
	}
	return geometry.NewLinearRing(b, pts)
}

// curve reads gml:Curve with its gml:segments container. GML 3.1.1 §10.2.2.
func (d *Decoder) curve(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	var segs []geometry.Segment
	seen := false
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		if name.Space != d.ns || name.Local != "segments" || seen {
			return d.unexpected(cur, "a single gml:segments")
		}
		seen = true
		var err error
		segs, err = d.segments(cur, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !seen {
		return nil, d.malformed(cur, "Curve", "missing segments")
	}
	return geometry.NewCurve(b, segs)
}

// orientableCurve reads gml:OrientableCurve: a baseCurve property and an
// orientation attribute, "+" unless given.
func (d *Decoder) orientableCurve(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	positive, err := d.orientation(cur)
	if err != nil {
		return nil, err
	}
	base, err := d.single(cur, f, "baseCurve", geometry.FamilyCurve)
	if err != nil {
		return nil, err
	}
	return geometry.NewOrientableCurve(b, base, positive)
}

func (d *Decoder) orientation(cur *xmlstream.Cursor) (bool, error) {
	v, ok := cur.Attr("", "orientation")
	if !ok {
		return true, nil
	}
	switch v {
	case "+":
		return true, nil
	case "-":
		return false, nil
	}
	return false, d.malformed(cur, cur.Name().Local, "orientation=%q must be + or -", v)
}

// ring reads gml:Ring: one or more curveMember properties forming a closed
// chain. Closure over referenced members is checked once they are bound.
func (d *Decoder) ring(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	members, err := d.members(cur, f, ringMembers)
	if err != nil {
		return nil, err
	}
	r, err := geometry.NewRing(b, members)
	if err != nil {
		return nil, err
	}
	d.deferValidation(r)
	return r, nil
}

// polygon reads gml:Polygon. GML 2 and 3.1 use outerBoundaryIs and
// innerBoundaryIs, GML 3.x exterior and interior.
func (d *Decoder) polygon(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	exterior, interiors, err := d.boundaries(cur, f)
	if err != nil {
		return nil, err
	}
	return geometry.NewPolygon(b, exterior, interiors)
}

// boundaries reads the exterior and interior ring properties of a Polygon
// or PolygonPatch.
func (d *Decoder) boundaries(cur *xmlstream.Cursor, f frame) (*geometry.Ring, []*geometry.Ring, error) {
	var exterior *geometry.Ring
	var interiors []*geometry.Ring
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		switch d.role(name) {
		case roleExterior:
			if exterior != nil || len(interiors) > 0 {
				return d.unexpected(cur, "interior boundary")
			}
			r, err := d.ringProperty(cur, f)
			exterior = r
			return err
		case roleInterior:
			r, err := d.ringProperty(cur, f)
			interiors = append(interiors, r)
			return err
		}
		return d.unexpected(cur, "exterior or interior boundary")
	})
	return exterior, interiors, err
}

// ringProperty reads a boundary property holding one inline LinearRing or
// Ring. Ring properties cannot be references.
func (d *Decoder) ringProperty(cur *xmlstream.Cursor, f frame) (*geometry.Ring, error) {
	var ring *geometry.Ring
	err := children(cur, func(name xml.Name) error {
		if ring != nil || !d.IsGeometryElement(name) || kindOf(name.Local).Family() != geometry.FamilyRing {
			return d.unexpected(cur, "a single gml:LinearRing or gml:Ring")
		}
		g, err := d.decode(cur, f)
		if err != nil {
			return err
		}
		ring = g.(*geometry.Ring)
		return nil
	})
	if err == nil && ring == nil {
		err = d.malformed(cur, cur.Name().Local, "missing ring")
	}
	return ring, err
}

// envelope reads gml:Envelope (lowerCorner and upperCorner, two pos, or
// coordinates) and the GML 2 gml:Box (coord or coordinates). When the
// envelope has no srsName, one given on a corner is used.
func (d *Decoder) envelope(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	p := d.positions(f)
	var corners [2]*geometry.Position
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		if name.Space == d.ns && d.dialect.HasCurves() && (name.Local == "lowerCorner" || name.Local == "upperCorner") {
			i := 0
			if name.Local == "upperCorner" {
				i = 1
			}
			if corners[i] != nil || p.n > 0 {
				return d.unexpected(cur, "a single lowerCorner and upperCorner")
			}
			if b.SRS == nil {
				if srsName, ok := cur.Attr("", "srsName"); ok {
					c, err := d.opts.Registry.Lookup(srsName)
					if err != nil {
						return err
					}
					b.SRS, f.srs = c, c
				}
			}
			pos, err := d.readPos(cur, f)
			corners[i] = &pos
			return err
		}
		if corners[0] != nil || corners[1] != nil {
			return d.unexpected(cur, "upperCorner")
		}
		if ok, err := p.add(cur); ok || err != nil {
			return err
		}
		return d.unexpected(cur, "envelope corners")
	})
	if err != nil {
		return nil, err
	}

	local := cur.Name().Local
	switch {
	case corners[0] != nil && corners[1] != nil:
		return geometry.NewEnvelope(b, *corners[0], *corners[1])
	case corners[0] != nil || corners[1] != nil:
		return nil, d.malformed(cur, local, "needs both lowerCorner and upperCorner")
	case len(p.pts) == 2:
		return geometry.NewEnvelope(b, p.pts[0], p.pts[1])
	}
	return nil, d.malformed(cur, local, "needs exactly two corner positions, got %d", len(p.pts))
}
