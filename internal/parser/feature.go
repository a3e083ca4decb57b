package parser

import (
	"encoding/xml"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/sirupsen/logrus"
)

// memberRule maps a property element name to the family its value must
// belong to. ok is false for names the enclosing element does not take.
type memberRule func(local string) (fam geometry.Family, ok bool)

// property reads a geometry property (GML 3.1.1 §7.2.2.4): either an
// xlink:href to a geometry elsewhere, which becomes an unresolved
// Reference, or exactly one inline geometry of family fam.
func (d *Decoder) property(cur *xmlstream.Cursor, f frame, fam geometry.Family) (geometry.Geometry, error) {
	local := cur.Name().Local
	if href, ok := cur.Attr(xmlstream.NamespaceXLink, "href"); ok {
		ref, err := d.ctx.RequestReference(href, fam)
		if err != nil {
			return nil, d.malformed(cur, local, "%v", err)
		}
		d.log.WithFields(logrus.Fields{"href": href, "property": local}).Debug("deferred reference")
		return ref, d.expectEmpty(cur, local)
	}

	var g geometry.Geometry
	err := children(cur, func(name xml.Name) error {
		if g != nil || !d.IsGeometryElement(name) || !fam.Accepts(kindOf(name.Local)) {
			return d.unexpected(cur, "a single "+fam.String()+" geometry")
		}
		var err error
		g, err = d.decode(cur, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, d.malformed(cur, local, "property has neither xlink:href nor a geometry")
	}
	return g, nil
}

// arrayProperty reads a members array (pointMembers, curveMembers, ...):
// zero or more inline geometries, no references.
func (d *Decoder) arrayProperty(cur *xmlstream.Cursor, f frame, fam geometry.Family) ([]geometry.Geometry, error) {
	var out []geometry.Geometry
	err := children(cur, func(name xml.Name) error {
		if !d.IsGeometryElement(name) || !fam.Accepts(kindOf(name.Local)) {
			return d.unexpected(cur, fam.String()+" geometries")
		}
		g, err := d.decode(cur, f)
		if err != nil {
			return err
		}
		out = append(out, g)
		return nil
	})
	return out, err
}

// members reads the member properties of an aggregate, composite or ring
// in document order. Single properties and member arrays may be mixed.
func (d *Decoder) members(cur *xmlstream.Cursor, f frame, rule memberRule) ([]geometry.Geometry, error) {
	var out []geometry.Geometry
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		role := d.role(name)
		fam, ok := rule(name.Local)
		if !ok || (role != roleMember && role != roleMembers) {
			return d.unexpected(cur, "a member property")
		}
		if role == roleMembers {
			gs, err := d.arrayProperty(cur, f, fam)
			out = append(out, gs...)
			return err
		}
		g, err := d.property(cur, f, fam)
		if err != nil {
			return err
		}
		out = append(out, g)
		return nil
	})
	return out, err
}

// single reads an element whose only content is one property named local,
// such as baseCurve or baseSurface.
func (d *Decoder) single(cur *xmlstream.Cursor, f frame, local string, fam geometry.Family) (geometry.Geometry, error) {
	owner := cur.Name().Local
	var g geometry.Geometry
	err := children(cur, func(name xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		if g != nil || name.Space != d.ns || name.Local != local {
			return d.unexpected(cur, "a single gml:"+local)
		}
		var err error
		g, err = d.property(cur, f, fam)
		return err
	})
	if err == nil && g == nil {
		err = d.malformed(cur, owner, "missing %s", local)
	}
	return g, err
}

// deferValidation queues the strict validation of v until every reference
// reachable from it has been bound.
func (d *Decoder) deferValidation(v interface {
	geometry.Geometry
	geometry.Validator
}) {
	pending := geometry.References(v)
	if len(pending) == 0 {
		return
	}
	d.ctx.Defer(v.Validate, pending...)
}

// Member rules per aggregate kind. GML 3.1.1 §7.5.10 and §9.
var (
	ringMembers = func(local string) (geometry.Family, bool) {
		return geometry.FamilyCurve, local == "curveMember"
	}
	shellMembers = func(local string) (geometry.Family, bool) {
		return geometry.FamilySurface, local == "surfaceMember"
	}
)

func aggregateMembers(kind geometry.Kind) memberRule {
	fam := geometry.MemberFamily(kind)
	names := map[geometry.Kind][]string{
		geometry.KindMultiPoint:       {"pointMember", "pointMembers"},
		geometry.KindMultiCurve:       {"curveMember", "curveMembers"},
		geometry.KindMultiLineString:  {"lineStringMember"},
		geometry.KindMultiSurface:     {"surfaceMember", "surfaceMembers"},
		geometry.KindMultiPolygon:     {"polygonMember"},
		geometry.KindMultiSolid:       {"solidMember", "solidMembers"},
		geometry.KindMultiGeometry:    {"geometryMember", "geometryMembers"},
		geometry.KindCompositeCurve:   {"curveMember"},
		geometry.KindCompositeSurface: {"surfaceMember"},
		geometry.KindCompositeSolid:   {"solidMember"},
		geometry.KindGeometricComplex: {"element"},
	}[kind]
	return func(local string) (geometry.Family, bool) {
		for _, n := range names {
			if n == local {
				return fam, true
			}
		}
		return fam, false
	}
}
