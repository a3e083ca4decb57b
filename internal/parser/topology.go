package parser

import (
	"encoding/xml"

	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/sirupsen/logrus"
)

// surface reads gml:Surface, gml:PolyhedralSurface and
// gml:TriangulatedSurface. GML 3.1.1 names the patch container after the
// patch type (polygonPatches, trianglePatches), GML 3.2.1 always uses
// patches; all three names are accepted.
func (d *Decoder) surface(cur *xmlstream.Cursor, b geometry.Base, f frame, kind geometry.Kind) (geometry.Geometry, error) {
	var patches []geometry.Patch
	seen := false
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		if seen || !isPatchContainer(d, name) {
			return d.unexpected(cur, "a single patch container")
		}
		seen = true
		var err error
		patches, err = d.patches(cur, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return geometry.NewSurface(b, kind, patches)
}

func isPatchContainer(d *Decoder, name xml.Name) bool {
	if name.Space != d.ns {
		return false
	}
	switch name.Local {
	case "patches", "polygonPatches", "trianglePatches":
		return true
	}
	return false
}

// tin reads gml:Tin: optional triangles, stopLines, breakLines, maxLength
// and at least three controlPoint positions. GML 3.1.1 §10.5.12.
func (d *Decoder) tin(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	var triangles []geometry.Patch
	var params geometry.TinParameters
	hasControl := false
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		if isPatchContainer(d, name) {
			var err error
			triangles, err = d.patches(cur, f)
			return err
		}
		if name.Space != d.ns {
			return d.unexpected(cur, "Tin content")
		}
		switch name.Local {
		case "stopLines", "breakLines":
			line, err := d.lineSegments(cur, f)
			if name.Local == "stopLines" {
				params.StopLines = append(params.StopLines, line)
			} else {
				params.BreakLines = append(params.BreakLines, line)
			}
			return err
		case "maxLength":
			m, err := d.readMeasure(cur)
			params.MaxLength = m
			return err
		case "controlPoint":
			if hasControl {
				return d.unexpected(cur, "a single controlPoint")
			}
			hasControl = true
			pts, err := d.readPositions(cur, f)
			params.ControlPoints = pts
			return err
		}
		return d.unexpected(cur, "Tin content")
	})
	if err != nil {
		return nil, err
	}
	return geometry.NewTin(b, triangles, params)
}

// lineSegments reads a LineStringSegmentArrayProperty.
func (d *Decoder) lineSegments(cur *xmlstream.Cursor, f frame) ([]*geometry.LineStringSegment, error) {
	var out []*geometry.LineStringSegment
	err := children(cur, func(name xml.Name) error {
		if name.Space != d.ns || name.Local != "LineStringSegment" {
			return d.unexpected(cur, "gml:LineStringSegment")
		}
		seg, err := d.segment(cur, f)
		if err != nil {
			return err
		}
		out = append(out, seg.(*geometry.LineStringSegment))
		return nil
	})
	return out, err
}

// orientableSurface reads gml:OrientableSurface.
func (d *Decoder) orientableSurface(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	positive, err := d.orientation(cur)
	if err != nil {
		return nil, err
	}
	base, err := d.single(cur, f, "baseSurface", geometry.FamilySurface)
	if err != nil {
		return nil, err
	}
	return geometry.NewOrientableSurface(b, base, positive)
}

// solid reads gml:Solid: one exterior and any number of interior shells.
// GML 3.1.1 uses surface properties, GML 3.2.1 wraps a gml:Shell.
func (d *Decoder) solid(cur *xmlstream.Cursor, b geometry.Base, f frame) (geometry.Geometry, error) {
	var exterior geometry.Geometry
	var interiors []geometry.Geometry
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		switch {
		case name.Space == d.ns && name.Local == "exterior":
			if exterior != nil || len(interiors) > 0 {
				return d.unexpected(cur, "interior")
			}
			var err error
			exterior, err = d.shellProperty(cur, f)
			return err
		case name.Space == d.ns && name.Local == "interior":
			g, err := d.shellProperty(cur, f)
			interiors = append(interiors, g)
			return err
		}
		return d.unexpected(cur, "exterior or interior")
	})
	if err != nil {
		return nil, err
	}
	s, err := geometry.NewSolid(b, exterior, interiors)
	if err != nil {
		return nil, err
	}
	d.deferValidation(s)
	return s, nil
}

// shellProperty reads a solid boundary. In GML 3.2 it may hold a gml:Shell,
// which decodes to a CompositeSurface.
func (d *Decoder) shellProperty(cur *xmlstream.Cursor, f frame) (geometry.Geometry, error) {
	if _, ok := cur.Attr(xmlstream.NamespaceXLink, "href"); ok || d.dialect != dialect.GML32 {
		return d.property(cur, f, geometry.FamilySurface)
	}
	local := cur.Name().Local
	var g geometry.Geometry
	err := children(cur, func(name xml.Name) error {
		if g != nil {
			return d.unexpected(cur, "a single shell")
		}
		var err error
		switch {
		case d.role(name) == roleShell:
			g, err = d.shell(cur, f)
		case d.IsGeometryElement(name) && geometry.FamilySurface.Accepts(kindOf(name.Local)):
			g, err = d.decode(cur, f)
		default:
			err = d.unexpected(cur, "gml:Shell")
		}
		return err
	})
	if err == nil && g == nil {
		err = d.malformed(cur, local, "missing shell")
	}
	return g, err
}

// shell reads gml:Shell (GML 3.2.1 §10.6.3), a closed composite surface.
func (d *Decoder) shell(cur *xmlstream.Cursor, f frame) (geometry.Geometry, error) {
	line, col := cur.Pos()
	b, inner, err := d.header(cur, f)
	if err != nil {
		return nil, locate(err, "Shell", line, col)
	}
	members, err := d.members(cur, inner, shellMembers)
	if err != nil {
		return nil, err
	}
	c, err := geometry.NewComposite(b, geometry.KindCompositeSurface, members)
	if err != nil {
		return nil, locate(err, "Shell", line, col)
	}
	if err := d.register(c, "Shell", line, col); err != nil {
		return nil, err
	}
	d.deferValidation(c)
	return c, nil
}

// composite reads CompositeCurve, CompositeSurface, CompositeSolid and
// GeometricComplex. Contiguity over referenced members is checked once the
// references are bound.
func (d *Decoder) composite(cur *xmlstream.Cursor, b geometry.Base, f frame, kind geometry.Kind) (geometry.Geometry, error) {
	members, err := d.members(cur, f, aggregateMembers(kind))
	if err != nil {
		return nil, err
	}
	c, err := geometry.NewComposite(b, kind, members)
	if err != nil {
		return nil, err
	}
	d.deferValidation(c)
	return c, nil
}

// multi reads the Multi* aggregates. An aggregate without members is legal.
// Dimensions of referenced members are checked once they are bound.
func (d *Decoder) multi(cur *xmlstream.Cursor, b geometry.Base, f frame, kind geometry.Kind) (geometry.Geometry, error) {
	members, err := d.members(cur, f, aggregateMembers(kind))
	if err != nil {
		return nil, err
	}
	m, err := geometry.NewMulti(b, kind, members)
	if err != nil {
		return nil, err
	}
	d.deferValidation(m)
	return m, nil
}

// register records an identified geometry with the resolution context.
func (d *Decoder) register(g geometry.Geometry, local string, line, col int) error {
	id := g.ID()
	if id == "" {
		return nil
	}
	if err := d.ctx.Register(id, g); err != nil {
		return locate(err, local, line, col)
	}
	d.log.WithFields(logrus.Fields{"id": id, "kind": g.Kind().String()}).Debug("registered geometry")
	return nil
}
