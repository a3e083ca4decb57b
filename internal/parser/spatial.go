package parser

import (
	"encoding/xml"
	"strconv"
	"strings"
	"unicode"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/xmlstream"
)

// positions collects the positions of an element from whichever coordinate
// syntaxes the dialect offers. GML 3.1.1 §7.5.1: pos and pointProperty may
// repeat; posList and coordinates stand alone.
type positions struct {
	d    *Decoder
	f    frame
	pts  []geometry.Position
	list bool
	n    int
}

func (d *Decoder) positions(f frame) *positions {
	return &positions{d: d, f: f}
}

// add consumes the current child if it is a coordinate element and reports
// whether it was one.
func (p *positions) add(cur *xmlstream.Cursor) (bool, error) {
	name := cur.Name()
	if p.d.role(name) != rolePosition {
		return false, nil
	}

	var err error
	switch name.Local {
	case "pos":
		var pos geometry.Position
		if pos, err = p.d.readPos(cur, p.f); err == nil {
			p.pts = append(p.pts, pos)
		}
	case "coord":
		var pos geometry.Position
		if pos, err = p.d.readCoord(cur); err == nil {
			p.pts = append(p.pts, pos)
		}
	case "pointProperty", "pointRep":
		var pos geometry.Position
		if pos, err = p.d.readPointProperty(cur, p.f); err == nil {
			p.pts = append(p.pts, pos)
		}
	case "posList", "coordinates":
		if p.n > 0 {
			return true, p.d.malformed(cur, name.Local, "%s cannot be combined with other positions", name.Local)
		}
		var pts []geometry.Position
		if name.Local == "posList" {
			pts, err = p.d.readPosList(cur, p.f)
		} else {
			pts, err = p.d.readCoordinates(cur)
		}
		if err == nil {
			p.pts = append(p.pts, pts...)
			p.list = true
		}
	}
	if err != nil {
		return true, err
	}
	if p.list && p.n > 0 {
		return true, p.d.malformed(cur, name.Local, "positions after a position list")
	}
	p.n++
	return true, nil
}

// readPositions reads every child of the current element as positions, skipping
// the standard object properties.
func (d *Decoder) readPositions(cur *xmlstream.Cursor, f frame) ([]geometry.Position, error) {
	p := d.positions(f)
	err := children(cur, func(xml.Name) error {
		if ok, err := d.skipStandard(cur); ok || err != nil {
			return err
		}
		if ok, err := p.add(cur); ok || err != nil {
			return err
		}
		return d.unexpected(cur, "positions")
	})
	return p.pts, err
}

// readPos reads gml:pos (DirectPositionType).
func (d *Decoder) readPos(cur *xmlstream.Cursor, f frame) (geometry.Position, error) {
	dim, declared, err := d.intAttr(cur, "srsDimension")
	if err != nil {
		return geometry.Position{}, err
	}
	text, err := cur.ElementText()
	if err != nil {
		return geometry.Position{}, err
	}
	ords, err := parseFloats(strings.Fields(text))
	if err != nil {
		return geometry.Position{}, d.malformed(cur, "pos", "%v", err)
	}
	if !declared {
		dim = f.srsDim
	}
	if dim != 0 && len(ords) != dim {
		return geometry.Position{}, d.malformed(cur, "pos", "%d ordinates, expected %d", len(ords), dim)
	}
	pos, err := geometry.NewPosition(ords)
	if err != nil {
		return pos, d.malformed(cur, "pos", "%d ordinates, expected 2 or 3", len(ords))
	}
	return pos, nil
}

// readPosList reads gml:posList (DirectPositionListType). The tuple size
// comes from srsDimension (or the GML 3.0 dimension attribute), then the
// enclosing elements, then the CRS, then 2. count must match when given.
func (d *Decoder) readPosList(cur *xmlstream.Cursor, f frame) ([]geometry.Position, error) {
	dim, declared, err := d.intAttr(cur, "srsDimension")
	if err != nil {
		return nil, err
	}
	if !declared {
		if dim, declared, err = d.intAttr(cur, "dimension"); err != nil {
			return nil, err
		}
	}
	if !declared {
		dim = f.dimension()
	}
	count := -1
	if v, ok := cur.Attr("", "count"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, d.malformed(cur, "posList", "count=%q is not a non-negative integer", v)
		}
		count = n
	}

	text, err := cur.ElementText()
	if err != nil {
		return nil, err
	}
	ords, err := parseFloats(strings.Fields(text))
	if err != nil {
		return nil, d.malformed(cur, "posList", "%v", err)
	}
	if len(ords)%dim != 0 {
		return nil, d.malformed(cur, "posList", "%d ordinates is not a multiple of dimension %d", len(ords), dim)
	}
	pts := make([]geometry.Position, 0, len(ords)/dim)
	for i := 0; i < len(ords); i += dim {
		pos, _ := geometry.NewPosition(ords[i : i+dim])
		pts = append(pts, pos)
	}
	if count >= 0 && count != len(pts) {
		return nil, d.malformed(cur, "posList", "count=%d but %d positions given", count, len(pts))
	}
	return pts, nil
}

// readCoordinates reads gml:coordinates (CoordinatesType). Tuples are
// separated by ts, ordinates by cs, and decimal is the decimal mark.
// Defaults: decimal=".", cs=",", ts=" " (GML 2.1.2 §5.2.2).
func (d *Decoder) readCoordinates(cur *xmlstream.Cursor) ([]geometry.Position, error) {
	decimal, cs, ts := ".", ",", " "
	if v, ok := cur.Attr("", "decimal"); ok && v != "" {
		decimal = v
	}
	if v, ok := cur.Attr("", "cs"); ok && v != "" {
		cs = v
	}
	if v, ok := cur.Attr("", "ts"); ok && v != "" {
		ts = v
	}
	if decimal == cs || decimal == ts || cs == ts {
		return nil, d.malformed(cur, "coordinates", "decimal, cs and ts must differ")
	}

	text, err := cur.ElementText()
	if err != nil {
		return nil, err
	}
	tuples := splitTuples(text, ts)
	pts := make([]geometry.Position, 0, len(tuples))
	dim := 0
	for i, tuple := range tuples {
		fields := strings.Split(tuple, cs)
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
			if decimal != "." {
				fields[j] = strings.Replace(fields[j], decimal, ".", 1)
			}
		}
		ords, err := parseFloats(fields)
		if err != nil {
			return nil, d.malformed(cur, "coordinates", "tuple %d: %v", i, err)
		}
		pos, err := geometry.NewPosition(ords)
		if err != nil {
			return nil, d.malformed(cur, "coordinates", "tuple %d has %d ordinates", i, len(ords))
		}
		if dim != 0 && pos.Dim != dim {
			return nil, d.malformed(cur, "coordinates", "tuple %d has dimension %d, expected %d", i, pos.Dim, dim)
		}
		dim = pos.Dim
		pts = append(pts, pos)
	}
	return pts, nil
}

// splitTuples splits s at ts. A whitespace separator matches any run of
// whitespace.
func splitTuples(s, ts string) []string {
	if strings.TrimSpace(ts) == "" {
		return strings.Fields(s)
	}
	var out []string
	for _, t := range strings.Split(s, ts) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// readCoord reads the GML 2 gml:coord element with X, Y and optional Z
// children.
func (d *Decoder) readCoord(cur *xmlstream.Cursor) (geometry.Position, error) {
	var ords [3]float64
	var seen [3]bool
	err := children(cur, func(name xml.Name) error {
		i := strings.Index("XYZ", name.Local)
		if name.Space != d.ns || len(name.Local) != 1 || i < 0 {
			return d.unexpected(cur, "X, Y or Z")
		}
		if seen[i] {
			return d.malformed(cur, "coord", "duplicate %s", name.Local)
		}
		text, err := cur.ElementText()
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return d.malformed(cur, "coord", "%s=%q is not a number", name.Local, strings.TrimSpace(text))
		}
		ords[i], seen[i] = v, true
		return nil
	})
	if err != nil {
		return geometry.Position{}, err
	}
	switch {
	case !seen[0] || !seen[1]:
		return geometry.Position{}, d.malformed(cur, "coord", "X and Y are required")
	case seen[2]:
		return geometry.XYZ(ords[0], ords[1], ords[2]), nil
	default:
		return geometry.XY(ords[0], ords[1]), nil
	}
}

// readPointProperty reads gml:pointProperty or gml:pointRep: an inline
// gml:Point, or an xlink:href to a Point decoded earlier in the document.
func (d *Decoder) readPointProperty(cur *xmlstream.Cursor, f frame) (geometry.Position, error) {
	local := cur.Name().Local
	if href, ok := cur.Attr(xmlstream.NamespaceXLink, "href"); ok {
		frag := href[strings.LastIndexByte(href, '#')+1:]
		g, found := d.ctx.Lookup(frag)
		pt, isPoint := g.(*geometry.Point)
		if !found || !isPoint {
			return geometry.Position{}, d.malformed(cur, local, "xlink:href %q must point to a Point decoded earlier", href)
		}
		if err := d.expectEmpty(cur, local); err != nil {
			return geometry.Position{}, err
		}
		return pt.Pos, nil
	}

	var pos geometry.Position
	found := false
	err := children(cur, func(name xml.Name) error {
		if found || name.Space != d.ns || name.Local != "Point" {
			return d.unexpected(cur, "a single gml:Point")
		}
		g, err := d.decode(cur, f)
		if err != nil {
			return err
		}
		pos, found = g.(*geometry.Point).Pos, true
		return nil
	})
	if err == nil && !found {
		err = d.malformed(cur, local, "empty property")
	}
	return pos, err
}

// expectEmpty consumes the remainder of an element that must have no child
// elements.
func (d *Decoder) expectEmpty(cur *xmlstream.Cursor, local string) error {
	return children(cur, func(xml.Name) error {
		return d.malformed(cur, local, "element with xlink:href must be empty")
	})
}

// readMeasure reads a MeasureType element: a number with a uom attribute.
func (d *Decoder) readMeasure(cur *xmlstream.Cursor) (geometry.Measure, error) {
	uom, _ := cur.Attr("", "uom")
	v, err := d.readFloat(cur)
	return geometry.Measure{Value: v, UOM: uom}, err
}

// readFloat reads an element holding one number.
func (d *Decoder) readFloat(cur *xmlstream.Cursor) (float64, error) {
	local := cur.Name().Local
	text, err := cur.ElementText()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, d.malformed(cur, local, "%q is not a number", strings.TrimSpace(text))
	}
	return v, nil
}

// readInt reads an element holding one integer.
func (d *Decoder) readInt(cur *xmlstream.Cursor) (int, error) {
	local := cur.Name().Local
	text, err := cur.ElementText()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, d.malformed(cur, local, "%q is not an integer", strings.TrimSpace(text))
	}
	return v, nil
}

// readVector reads a VectorType or doubleList element.
func (d *Decoder) readVector(cur *xmlstream.Cursor) ([]float64, error) {
	local := cur.Name().Local
	text, err := cur.ElementText()
	if err != nil {
		return nil, err
	}
	v, err := parseFloats(strings.Fields(text))
	if err != nil {
		return nil, d.malformed(cur, local, "%v", err)
	}
	return v, nil
}

type numberError struct {
	index int
	text  string
}

func (e *numberError) Error() string {
	return "ordinate " + strconv.Itoa(e.index) + " " + strconv.Quote(e.text) + " is not a number"
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || (strings.IndexFunc(f, unicode.IsLetter) >= 0 && !isExponent(f)) {
			return nil, &numberError{index: i, text: f}
		}
		out = append(out, v)
	}
	return out, nil
}

// isExponent reports whether the only letters in f are exponent markers,
// so that "NaN" and "Inf" are rejected while "1e5" is not.
func isExponent(f string) bool {
	for _, r := range f {
		if unicode.IsLetter(r) && r != 'e' && r != 'E' {
			return false
		}
	}
	return true
}
