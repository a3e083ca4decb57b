package parser

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/xmlstream"
)

// interpolations lists the interpolation attribute value each segment
// element must carry when present. GML 3.1.1 §10.2.2.
var interpolations = map[string][]string{
	"LineStringSegment":   {"linear"},
	"Arc":                 {"circularArc3Points"},
	"ArcString":           {"circularArc3Points"},
	"Circle":              {"circularArc3Points"},
	"ArcByBulge":          {"circularArc2PointWithBulge"},
	"ArcStringByBulge":    {"circularArc2PointWithBulge"},
	"ArcByCenterPoint":    {"circularArcCenterPointWithRadius"},
	"CircleByCenterPoint": {"circularArcCenterPointWithRadius"},
	"Geodesic":            {"geodesic"},
	"GeodesicString":      {"geodesic"},
	"Bezier":              {"polynomialSpline"},
	"BSpline":             {"polynomialSpline", "rationalSpline"},
	"CubicSpline":         {"cubicSpline"},
}

// segments reads the children of gml:segments.
func (d *Decoder) segments(cur *xmlstream.Cursor, f frame) ([]geometry.Segment, error) {
	var out []geometry.Segment
	err := children(cur, func(name xml.Name) error {
		if d.role(name) != roleSegment {
			return d.unexpected(cur, "a curve segment")
		}
		seg, err := d.segment(cur, f)
		if err != nil {
			return err
		}
		out = append(out, seg)
		return nil
	})
	return out, err
}

// segmentParts is the content of a segment element: its control positions
// and the parameter elements specific to the segment kind.
type segmentParts struct {
	pts     []geometry.Position
	numbers map[string][]float64
	vectors map[string][][]float64
	measure map[string]geometry.Measure
	knots   []geometry.Knot
}

// segment reads one curve segment element and leaves the cursor on its end
// tag.
func (d *Decoder) segment(cur *xmlstream.Cursor, f frame) (geometry.Segment, error) {
	local := cur.Name().Local
	if v, ok := cur.Attr("", "interpolation"); ok {
		allowed := interpolations[local]
		valid := false
		for _, a := range allowed {
			valid = valid || v == a
		}
		if !valid {
			return nil, d.malformed(cur, local, "interpolation=%q, expected %s", v, strings.Join(allowed, " or "))
		}
	}
	numArc := -1
	if v, ok := cur.Attr("", "numArc"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			return nil, d.malformed(cur, local, "numArc=%q is not a positive integer", v)
		}
		numArc = n
	}
	rational := false
	if v, _ := cur.Attr("", "interpolation"); v == "rationalSpline" {
		rational = true
	}
	knotType, _ := cur.Attr("", "knotType")

	if local == "Clothoid" {
		return d.clothoid(cur, f)
	}
	parts, err := d.segmentParts(cur, f, local)
	if err != nil {
		return nil, err
	}
	pts := parts.pts

	var seg geometry.Segment
	switch local {
	case "LineStringSegment":
		seg, err = geometry.NewLineStringSegment(pts)
	case "Arc", "Circle":
		if len(pts) != 3 {
			return nil, d.malformed(cur, local, "needs exactly 3 positions, got %d", len(pts))
		}
		if local == "Arc" {
			seg, err = geometry.NewArc(pts[0], pts[1], pts[2])
		} else {
			seg, err = geometry.NewCircle(pts[0], pts[1], pts[2])
		}
	case "ArcString":
		if numArc > 0 && 2*numArc+1 != len(pts) {
			return nil, d.malformed(cur, local, "numArc=%d needs %d positions, got %d", numArc, 2*numArc+1, len(pts))
		}
		seg, err = geometry.NewArcString(pts)
	case "ArcByBulge":
		bulges, normals := parts.numbers["bulge"], parts.vectors["normal"]
		if len(pts) != 2 || len(bulges) != 1 || len(normals) != 1 {
			return nil, d.malformed(cur, local, "needs 2 positions, one bulge and one normal")
		}
		seg, err = geometry.NewArcByBulge(pts[0], pts[1], bulges[0], normals[0])
	case "ArcStringByBulge":
		if numArc > 0 && numArc+1 != len(pts) {
			return nil, d.malformed(cur, local, "numArc=%d needs %d positions, got %d", numArc, numArc+1, len(pts))
		}
		seg, err = geometry.NewArcStringByBulge(pts, parts.numbers["bulge"], parts.vectors["normal"])
	case "ArcByCenterPoint", "CircleByCenterPoint":
		seg, err = d.centerPointArc(cur, local, parts)
	case "Geodesic":
		if len(pts) != 2 {
			return nil, d.malformed(cur, local, "needs exactly 2 positions, got %d", len(pts))
		}
		seg, err = geometry.NewGeodesic(pts[0], pts[1])
	case "GeodesicString":
		seg, err = geometry.NewGeodesicString(pts)
	case "Bezier":
		if deg, ok := parts.numbers["degree"]; ok && int(deg[0]) != len(pts)-1 {
			return nil, d.malformed(cur, local, "degree %d does not match %d positions", int(deg[0]), len(pts))
		}
		if len(parts.knots) != 0 && len(parts.knots) != 2 {
			return nil, d.malformed(cur, local, "needs exactly 2 knots, got %d", len(parts.knots))
		}
		seg, err = geometry.NewBezier(pts)
	case "BSpline":
		deg, ok := parts.numbers["degree"]
		if !ok {
			return nil, d.malformed(cur, local, "missing degree")
		}
		var s *geometry.BSpline
		if s, err = geometry.NewBSpline(int(deg[0]), pts, parts.knots); err == nil {
			s.Polynomial = !rational
			s.KnotType = knotType
			seg = s
		}
	case "CubicSpline":
		start, end := parts.vectors["vectorAtStart"], parts.vectors["vectorAtEnd"]
		if len(start) != 1 || len(end) != 1 {
			return nil, d.malformed(cur, local, "needs vectorAtStart and vectorAtEnd")
		}
		seg, err = geometry.NewCubicSpline(pts, start[0], end[0])
	default:
		return nil, d.unexpected(cur, "a curve segment")
	}
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// segmentParts reads the children of a segment element.
func (d *Decoder) segmentParts(cur *xmlstream.Cursor, f frame, owner string) (*segmentParts, error) {
	p := d.positions(f)
	parts := &segmentParts{
		numbers: map[string][]float64{},
		vectors: map[string][][]float64{},
		measure: map[string]geometry.Measure{},
	}
	err := children(cur, func(name xml.Name) error {
		if ok, err := p.add(cur); ok || err != nil {
			return err
		}
		if name.Space != d.ns {
			return d.unexpected(cur, "segment content")
		}
		switch name.Local {
		case "bulge", "degree":
			v, err := d.readFloat(cur)
			parts.numbers[name.Local] = append(parts.numbers[name.Local], v)
			return err
		case "normal", "vectorAtStart", "vectorAtEnd":
			v, err := d.readVector(cur)
			parts.vectors[name.Local] = append(parts.vectors[name.Local], v)
			return err
		case "radius", "startAngle", "endAngle":
			if _, dup := parts.measure[name.Local]; dup {
				return d.malformed(cur, owner, "duplicate %s", name.Local)
			}
			m, err := d.readMeasure(cur)
			parts.measure[name.Local] = m
			return err
		case "knot":
			k, err := d.readKnot(cur)
			parts.knots = append(parts.knots, k)
			return err
		}
		return d.unexpected(cur, "segment content")
	})
	parts.pts = p.pts
	return parts, err
}

// readKnot reads gml:knot/gml:Knot with value, multiplicity and weight.
func (d *Decoder) readKnot(cur *xmlstream.Cursor) (geometry.Knot, error) {
	k := geometry.Knot{Weight: 1}
	found := false
	err := children(cur, func(name xml.Name) error {
		if found || name.Space != d.ns || name.Local != "Knot" {
			return d.unexpected(cur, "a single gml:Knot")
		}
		found = true
		return children(cur, func(name xml.Name) error {
			if name.Space != d.ns {
				return d.unexpected(cur, "value, multiplicity or weight")
			}
			var err error
			switch name.Local {
			case "value":
				k.Value, err = d.readFloat(cur)
			case "multiplicity":
				k.Multiplicity, err = d.readInt(cur)
			case "weight":
				k.Weight, err = d.readFloat(cur)
			default:
				err = d.unexpected(cur, "value, multiplicity or weight")
			}
			return err
		})
	})
	if err == nil && !found {
		err = d.malformed(cur, "knot", "missing gml:Knot")
	}
	return k, err
}

// centerPointArc builds ArcByCenterPoint or CircleByCenterPoint. Angles are
// converted to degrees; a circle's startAngle defaults to 0 and its
// endAngle, when given, must equal startAngle.
func (d *Decoder) centerPointArc(cur *xmlstream.Cursor, local string, parts *segmentParts) (geometry.Segment, error) {
	if len(parts.pts) != 1 {
		return nil, d.malformed(cur, local, "needs exactly one centre position, got %d", len(parts.pts))
	}
	radius, ok := parts.measure["radius"]
	if !ok {
		return nil, d.malformed(cur, local, "missing radius")
	}
	start, hasStart := parts.measure["startAngle"]
	end, hasEnd := parts.measure["endAngle"]

	if local == "CircleByCenterPoint" {
		if hasStart && hasEnd && degrees(start) != degrees(end) {
			return nil, d.malformed(cur, local, "startAngle and endAngle differ")
		}
		if !hasStart && hasEnd {
			start = end
		}
		return geometry.NewCircleByCenterPoint(parts.pts[0], radius, degrees(start))
	}
	if !hasStart || !hasEnd {
		return nil, d.malformed(cur, local, "needs startAngle and endAngle")
	}
	return geometry.NewArcByCenterPoint(parts.pts[0], radius, degrees(start), degrees(end))
}

// degrees converts an angle measure to degrees. Radians are recognized by
// uom "rad" or EPSG unit 9101; everything else is taken as degrees.
func degrees(m geometry.Measure) float64 {
	uom := strings.ToLower(m.UOM)
	if uom == "rad" || uom == "radian" || strings.HasSuffix(uom, ":9101") || strings.HasSuffix(uom, "/9101") {
		return m.Value * 180 / math.Pi
	}
	return m.Value
}

// clothoid reads gml:Clothoid: refLocation/AffinePlacement, scaleFactor,
// startParameter and endParameter.
func (d *Decoder) clothoid(cur *xmlstream.Cursor, f frame) (geometry.Segment, error) {
	var loc *geometry.Position
	var dirs [][]float64
	var scale, start, end float64
	var hasScale, hasS, hasE bool
	err := children(cur, func(name xml.Name) error {
		if name.Space != d.ns {
			return d.unexpected(cur, "clothoid content")
		}
		var err error
		switch name.Local {
		case "refLocation":
			loc, dirs, err = d.affinePlacement(cur, f)
		case "scaleFactor":
			scale, err = d.readFloat(cur)
			hasScale = true
		case "startParameter":
			start, err = d.readFloat(cur)
			hasS = true
		case "endParameter":
			end, err = d.readFloat(cur)
			hasE = true
		default:
			err = d.unexpected(cur, "clothoid content")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if loc == nil || !hasScale || !hasS || !hasE {
		return nil, d.malformed(cur, "Clothoid", "needs refLocation, scaleFactor, startParameter and endParameter")
	}
	return geometry.NewClothoid(*loc, dirs, scale, start, end)
}

// affinePlacement reads refLocation/AffinePlacement: a location and its
// reference directions.
func (d *Decoder) affinePlacement(cur *xmlstream.Cursor, f frame) (*geometry.Position, [][]float64, error) {
	var loc *geometry.Position
	var dirs [][]float64
	found := false
	err := children(cur, func(name xml.Name) error {
		if found || name.Space != d.ns || name.Local != "AffinePlacement" {
			return d.unexpected(cur, "a single gml:AffinePlacement")
		}
		found = true
		return children(cur, func(name xml.Name) error {
			if name.Space != d.ns {
				return d.unexpected(cur, "affine placement content")
			}
			switch name.Local {
			case "location":
				pos, err := d.readPos(cur, f)
				loc = &pos
				return err
			case "refDirection":
				v, err := d.readVector(cur)
				dirs = append(dirs, v)
				return err
			case "inDimension", "outDimension":
				_, err := d.readInt(cur)
				return err
			}
			return d.unexpected(cur, "affine placement content")
		})
	})
	if err == nil && loc == nil {
		err = d.malformed(cur, "refLocation", "missing location")
	}
	return loc, dirs, err
}
