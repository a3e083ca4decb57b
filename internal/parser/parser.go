// Package parser decodes GML 2.1.2, 3.1.1 and 3.2.1 geometry elements from
// an xmlstream.Cursor into the geometry model.
//
// Every decode call starts on the opening tag of a geometry element and
// returns with the cursor on the matching closing tag, so callers can embed
// geometry decoding inside their own element loops (feature properties,
// aggregates, whole documents).
//
// References:
//   - OGC 02-069 (GML 2.1.2) geometry.xsd
//   - OGC 03-105r1 (GML 3.1.1) §7.5 and §8, geometryBasic*.xsd, geometryPrimitives.xsd
//   - OGC 07-036 (GML 3.2.1) §10 and §11
package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/refs"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Options configures decoding behavior
type Options struct {
	// Registry resolves srsName values. Nil uses crs.NewStaticRegistry().
	Registry crs.Registry

	// Logger receives debug output about registrations and references.
	// Nil uses the logrus standard logger.
	Logger logrus.FieldLogger

	// ValidateIDs: if true, gml:id and gid values must be XML NCNames
	// Default: true
	ValidateIDs bool

	// MaxDepth bounds geometry nesting (aggregates of composites of ...).
	// Default: 256
	MaxDepth int
}

// DefaultOptions returns decode options with defaults
func DefaultOptions() Options {
	return Options{
		ValidateIDs: true,
		MaxDepth:    256,
	}
}

// Decoder decodes geometries of one dialect. It owns the reference
// resolution context of one document and is not safe for concurrent use.
type Decoder struct {
	dialect dialect.Dialect
	ns      string
	opts    Options
	ctx     *refs.Context
	log     logrus.FieldLogger
	depth   int
}

// New returns a decoder for dialect d.
func New(d dialect.Dialect, opts Options) (*Decoder, error) {
	if !d.Valid() {
		return nil, errors.Newf("parser: unsupported dialect %v", d)
	}
	if opts.Registry == nil {
		opts.Registry = crs.NewStaticRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	log := opts.Logger.WithField("dialect", d.String())
	return &Decoder{
		dialect: d,
		ns:      d.Namespace(),
		opts:    opts,
		ctx:     refs.NewContext(log),
		log:     log,
	}, nil
}

// Dialect returns the dialect the decoder was built for.
func (d *Decoder) Dialect() dialect.Dialect { return d.dialect }

// Context returns the reference resolution context shared by every Decode
// call on this decoder.
func (d *Decoder) Context() *refs.Context { return d.ctx }

// ResolveLocalRefs binds the same-document references collected so far.
// See refs.Context.ResolveLocalRefs.
func (d *Decoder) ResolveLocalRefs() error { return d.ctx.ResolveLocalRefs() }

// Decode decodes the geometry or envelope element the cursor is positioned
// on. inherited is the CRS of the nearest enclosing element that declared
// one, or nil. On success the cursor is on the matching end tag. On failure
// the identifiers and references met inside the element are forgotten.
func (d *Decoder) Decode(cur *xmlstream.Cursor, inherited *crs.CRS) (geometry.Geometry, error) {
	if !cur.IsStart() {
		return nil, cur.Errorf("decode requested on %s", xmlstream.Describe(cur.Token()))
	}
	cp := d.ctx.Checkpoint()
	g, err := d.decode(cur, frame{srs: inherited})
	if err != nil {
		// Children decoded before the failure are not part of the document.
		d.ctx.Rollback(cp)
		return nil, err
	}
	return g, nil
}

// IsGeometryElement reports whether name is a geometry or envelope element
// of the decoder's dialect.
func (d *Decoder) IsGeometryElement(name xml.Name) bool {
	if name.Space != d.ns {
		return false
	}
	role, ok := lookupTerm(d.dialect, name.Local)
	return ok && role == roleGeometry
}

// frame is the coordinate context inherited from enclosing elements.
type frame struct {
	srs    *crs.CRS
	srsDim int
}

// dimension returns the number of ordinates per position for list syntaxes
// that do not state it themselves.
func (f frame) dimension() int {
	switch {
	case f.srsDim > 0:
		return f.srsDim
	case f.srs != nil && f.srs.Dimension > 0:
		return f.srs.Dimension
	default:
		return 2
	}
}

func (d *Decoder) decode(cur *xmlstream.Cursor, f frame) (geometry.Geometry, error) {
	name := cur.Name()
	line, col := cur.Pos()
	if !d.IsGeometryElement(name) {
		return nil, d.unexpected(cur, "a geometry element")
	}
	if d.depth >= d.opts.MaxDepth {
		return nil, d.malformed(cur, name.Local, "geometry nesting exceeds %d levels", d.opts.MaxDepth)
	}
	d.depth++
	defer func() { d.depth-- }()

	b, inner, err := d.header(cur, f)
	if err != nil {
		return nil, locate(err, name.Local, line, col)
	}

	var g geometry.Geometry
	switch name.Local {
	case "Point":
		g, err = d.point(cur, b, inner)
	case "LineString":
		g, err = d.lineString(cur, b, inner)
	case "LinearRing":
		g, err = d.linearRing(cur, b, inner)
	case "Curve":
		g, err = d.curve(cur, b, inner)
	case "OrientableCurve":
		g, err = d.orientableCurve(cur, b, inner)
	case "Ring":
		g, err = d.ring(cur, b, inner)
	case "Polygon":
		g, err = d.polygon(cur, b, inner)
	case "Surface", "PolyhedralSurface", "TriangulatedSurface":
		g, err = d.surface(cur, b, inner, kindOf(name.Local))
	case "Tin":
		g, err = d.tin(cur, b, inner)
	case "OrientableSurface":
		g, err = d.orientableSurface(cur, b, inner)
	case "Solid":
		g, err = d.solid(cur, b, inner)
	case "CompositeCurve", "CompositeSurface", "CompositeSolid", "GeometricComplex":
		g, err = d.composite(cur, b, inner, kindOf(name.Local))
	case "MultiPoint", "MultiCurve", "MultiLineString", "MultiSurface", "MultiPolygon", "MultiSolid", "MultiGeometry":
		g, err = d.multi(cur, b, inner, kindOf(name.Local))
	case "Envelope", "Box":
		g, err = d.envelope(cur, b, inner)
	default:
		err = d.unexpected(cur, "a geometry element")
	}
	if err != nil {
		return nil, locate(err, name.Local, line, col)
	}
	if err := cur.Require(false, d.ns, name.Local); err != nil {
		return nil, err
	}

	if err := d.register(g, name.Local, line, col); err != nil {
		return nil, err
	}
	return g, nil
}

// header reads the attributes shared by all geometries: the identifier,
// srsName and srsDimension. It returns the base and the frame for children.
func (d *Decoder) header(cur *xmlstream.Cursor, f frame) (geometry.Base, frame, error) {
	var b geometry.Base
	if d.dialect != dialect.GML2 {
		b.GID, _ = cur.Attr(d.ns, "id")
	}
	if b.GID == "" {
		b.GID, _ = cur.Attr("", "gid")
	}
	if d.opts.ValidateIDs && !ValidateID(b.GID) {
		return b, f, d.malformed(cur, cur.Name().Local, "identifier %q is not an NCName", b.GID)
	}

	inner := f
	if name, ok := cur.Attr("", "srsName"); ok {
		c, err := crs.Resolve(d.opts.Registry, name, f.srs)
		if err != nil {
			return b, f, err
		}
		inner = frame{srs: c}
	}
	if dim, ok, err := d.intAttr(cur, "srsDimension"); err != nil {
		return b, f, err
	} else if ok {
		inner.srsDim = dim
	}
	b.SRS = inner.srs
	return b, inner, nil
}

func (d *Decoder) intAttr(cur *xmlstream.Cursor, local string) (int, bool, error) {
	v, ok := cur.Attr("", local)
	if !ok {
		return 0, false, nil
	}
	var n int
	if _, err := fmt.Sscan(v, &n); err != nil || !validDimension(n) {
		return 0, false, d.malformed(cur, cur.Name().Local, "%s=%q must be 2 or 3", local, v)
	}
	return n, true, nil
}

// children calls fn for each child start tag of the current element and
// leaves the cursor on the element's end tag. fn must return with the
// cursor on the child's end tag.
func children(cur *xmlstream.Cursor, fn func(name xml.Name) error) error {
	for {
		tok, err := cur.NextTag()
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.EndElement); ok {
			return nil
		}
		if err := fn(cur.Name()); err != nil {
			return err
		}
	}
}

// role returns the vocabulary role of a child element in the decoder's
// dialect, or "" when it is not a GML element of this dialect.
func (d *Decoder) role(name xml.Name) string {
	if name.Space != d.ns {
		return ""
	}
	r, ok := lookupTerm(d.dialect, name.Local)
	if !ok {
		return ""
	}
	return r
}

// skipStandard consumes gml:name, gml:description and the other standard
// object properties. It reports whether the element was one of them.
func (d *Decoder) skipStandard(cur *xmlstream.Cursor) (bool, error) {
	if d.role(cur.Name()) != roleStandard {
		return false, nil
	}
	return true, cur.Skip()
}

func (d *Decoder) unexpected(cur *xmlstream.Cursor, expected string) error {
	line, col := cur.Pos()
	return &ErrUnexpectedElement{
		Name:     cur.Name(),
		Dialect:  d.dialect,
		Expected: expected,
		Line:     line,
		Column:   col,
	}
}

func (d *Decoder) malformed(cur *xmlstream.Cursor, element, format string, args ...interface{}) error {
	line, col := cur.Pos()
	return &ErrMalformed{
		Element: element,
		Reason:  fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}

// locate adds the element and position to model and CRS errors that do
// not carry them yet. Errors from nested elements are already located.
func locate(err error, local string, line, col int) error {
	switch err.(type) {
	case *geometry.ErrInvalidGeometry, *crs.ErrUnknownCRS, *refs.ErrDuplicateID:
		return errors.Wrapf(err, "gml:%s at line %d, column %d", local, line, col)
	}
	return err
}

var kindsByName = map[string]geometry.Kind{
	"Point":               geometry.KindPoint,
	"LineString":          geometry.KindLineString,
	"Curve":               geometry.KindCurve,
	"OrientableCurve":     geometry.KindOrientableCurve,
	"CompositeCurve":      geometry.KindCompositeCurve,
	"LinearRing":          geometry.KindLinearRing,
	"Ring":                geometry.KindRing,
	"Polygon":             geometry.KindPolygon,
	"Surface":             geometry.KindSurface,
	"PolyhedralSurface":   geometry.KindPolyhedralSurface,
	"TriangulatedSurface": geometry.KindTriangulatedSurface,
	"Tin":                 geometry.KindTin,
	"OrientableSurface":   geometry.KindOrientableSurface,
	"CompositeSurface":    geometry.KindCompositeSurface,
	"Shell":               geometry.KindCompositeSurface,
	"Solid":               geometry.KindSolid,
	"CompositeSolid":      geometry.KindCompositeSolid,
	"GeometricComplex":    geometry.KindGeometricComplex,
	"MultiPoint":          geometry.KindMultiPoint,
	"MultiCurve":          geometry.KindMultiCurve,
	"MultiLineString":     geometry.KindMultiLineString,
	"MultiSurface":        geometry.KindMultiSurface,
	"MultiPolygon":        geometry.KindMultiPolygon,
	"MultiSolid":          geometry.KindMultiSolid,
	"MultiGeometry":       geometry.KindMultiGeometry,
	"Envelope":            geometry.KindEnvelope,
	"Box":                 geometry.KindEnvelope,
}

// kindOf returns the geometry kind decoded from a local element name.
func kindOf(local string) geometry.Kind {
	return kindsByName[local]
}
