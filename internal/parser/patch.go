package parser

import (
	"encoding/xml"
	"strings"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/xmlstream"
)

// patches reads a patch container (gml:patches, gml:polygonPatches or
// gml:trianglePatches).
func (d *Decoder) patches(cur *xmlstream.Cursor, f frame) ([]geometry.Patch, error) {
	var out []geometry.Patch
	err := children(cur, func(name xml.Name) error {
		if d.role(name) != rolePatch {
			return d.unexpected(cur, "a surface patch")
		}
		p, err := d.patch(cur, f)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// patch reads one surface patch element. GML 3.1.1 §10.5.
func (d *Decoder) patch(cur *xmlstream.Cursor, f frame) (geometry.Patch, error) {
	local := cur.Name().Local
	if v, ok := cur.Attr("", "interpolation"); ok && v != "planar" && local != "Cone" && local != "Cylinder" && local != "Sphere" {
		return nil, d.malformed(cur, local, "interpolation=%q, expected planar", v)
	}

	switch local {
	case "PolygonPatch":
		exterior, interiors, err := d.boundaries(cur, f)
		if err != nil {
			return nil, err
		}
		return geometry.NewPolygonPatch(exterior, interiors)
	case "Triangle", "Rectangle":
		exterior, interiors, err := d.boundaries(cur, f)
		if err != nil {
			return nil, err
		}
		if exterior == nil || len(interiors) > 0 {
			return nil, d.malformed(cur, local, "needs exactly one exterior ring")
		}
		if local == "Triangle" {
			return geometry.NewTriangle(exterior)
		}
		return geometry.NewRectangle(exterior)
	case "Cone", "Cylinder", "Sphere":
		return d.gridded(cur, f, local)
	}
	return nil, d.unexpected(cur, "a surface patch")
}

var griddedKinds = map[string]geometry.PatchKind{
	"Cone":     geometry.PatchCone,
	"Cylinder": geometry.PatchCylinder,
	"Sphere":   geometry.PatchSphere,
}

// gridded reads Cone, Cylinder and Sphere. The rows element is overloaded
// in GML 3.1.1: the first holds gml:Row children, an optional second one
// holds the row count. gml:columns holds the column count.
func (d *Decoder) gridded(cur *xmlstream.Cursor, f frame, local string) (geometry.Patch, error) {
	horizontal, _ := cur.Attr("", "horizontalCurveType")
	vertical, _ := cur.Attr("", "verticalCurveType")
	var rows [][]geometry.Position
	rowCount, colCount := -1, -1
	err := children(cur, func(name xml.Name) error {
		if name.Space != d.ns {
			return d.unexpected(cur, "rows or columns")
		}
		switch name.Local {
		case "rows":
			if rows != nil {
				n, err := d.readInt(cur)
				rowCount = n
				return err
			}
			var err error
			rows, err = d.gridRows(cur, f)
			if rows == nil {
				rows = [][]geometry.Position{}
			}
			return err
		case "columns":
			n, err := d.readInt(cur)
			colCount = n
			return err
		}
		return d.unexpected(cur, "rows or columns")
	})
	if err != nil {
		return nil, err
	}
	if rowCount >= 0 && rowCount != len(rows) {
		return nil, d.malformed(cur, local, "rows=%d but %d rows given", rowCount, len(rows))
	}
	if colCount >= 0 && len(rows) > 0 && colCount != len(rows[0]) {
		return nil, d.malformed(cur, local, "columns=%d but rows have %d positions", colCount, len(rows[0]))
	}
	p, err := geometry.NewGriddedPatch(griddedKinds[local], rows)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(horizontal); v != "" {
		p.HorizontalInterpolation = v
	}
	if v := strings.TrimSpace(vertical); v != "" {
		p.VerticalInterpolation = v
	}
	return p, nil
}

// gridRows reads the Row children of the first gml:rows element. A rows
// element holding text instead is an error here.
func (d *Decoder) gridRows(cur *xmlstream.Cursor, f frame) ([][]geometry.Position, error) {
	var rows [][]geometry.Position
	err := children(cur, func(name xml.Name) error {
		if name.Space != d.ns || name.Local != "Row" {
			return d.unexpected(cur, "gml:Row")
		}
		pts, err := d.readPositions(cur, f)
		rows = append(rows, pts)
		return err
	})
	return rows, err
}
