package gml

import (
	"encoding/xml"
	"io"

	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/linearize"
	"github.com/beetlebugorg/gml/internal/parser"
	"github.com/beetlebugorg/gml/internal/refs"
	"github.com/beetlebugorg/gml/internal/writer"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Dialect selects the GML version read or written.
type Dialect = dialect.Dialect

// Supported dialects.
const (
	GML2  = dialect.GML2
	GML31 = dialect.GML31
	GML32 = dialect.GML32
)

// ParseDialect accepts "2", "2.1.2", "3.1", "3.1.1", "3.2" or "3.2.1",
// optionally prefixed with "gml".
func ParseDialect(s string) (Dialect, error) {
	return dialect.Parse(s)
}

// Geometry model.
type (
	Geometry  = geometry.Geometry
	Position  = geometry.Position
	Kind      = geometry.Kind
	Envelope  = geometry.Envelope
	Reference = geometry.Reference
	CRS       = crs.CRS
	Registry  = crs.Registry
)

// Geometry kinds.
const (
	KindPoint               = geometry.KindPoint
	KindLineString          = geometry.KindLineString
	KindCurve               = geometry.KindCurve
	KindOrientableCurve     = geometry.KindOrientableCurve
	KindCompositeCurve      = geometry.KindCompositeCurve
	KindLinearRing          = geometry.KindLinearRing
	KindRing                = geometry.KindRing
	KindPolygon             = geometry.KindPolygon
	KindSurface             = geometry.KindSurface
	KindPolyhedralSurface   = geometry.KindPolyhedralSurface
	KindTriangulatedSurface = geometry.KindTriangulatedSurface
	KindTin                 = geometry.KindTin
	KindOrientableSurface   = geometry.KindOrientableSurface
	KindCompositeSurface    = geometry.KindCompositeSurface
	KindSolid               = geometry.KindSolid
	KindCompositeSolid      = geometry.KindCompositeSolid
	KindGeometricComplex    = geometry.KindGeometricComplex
	KindMultiPoint          = geometry.KindMultiPoint
	KindMultiCurve          = geometry.KindMultiCurve
	KindMultiLineString     = geometry.KindMultiLineString
	KindMultiSurface        = geometry.KindMultiSurface
	KindMultiPolygon        = geometry.KindMultiPolygon
	KindMultiSolid          = geometry.KindMultiSolid
	KindMultiGeometry       = geometry.KindMultiGeometry
	KindEnvelope            = geometry.KindEnvelope
)

// Streams and reference resolution.
type (
	Cursor  = xmlstream.Cursor
	Sink    = xmlstream.Sink
	Context = refs.Context
)

// Linearization.
type (
	Strategy  = linearize.Strategy
	Criterion = linearize.Criterion
)

// Errors returned by decoding and encoding. Discriminate with errors.As.
type (
	SyntaxError             = xmlstream.SyntaxError
	ErrUnexpectedElement    = parser.ErrUnexpectedElement
	ErrMalformed            = parser.ErrMalformed
	ErrUnknownCRS           = crs.ErrUnknownCRS
	ErrInvalidGeometry      = geometry.ErrInvalidGeometry
	ErrUnresolvedReferences = refs.ErrUnresolvedReferences
	ErrDuplicateID          = refs.ErrDuplicateID
	ErrUnsupported          = writer.ErrUnsupported
)

// NewStaticRegistry returns a CRS registry holding the built-in EPSG and OGC
// definitions. Register adds more.
func NewStaticRegistry() *crs.StaticRegistry {
	return crs.NewStaticRegistry()
}

// DefaultCriterion returns the default linearization bounds.
func DefaultCriterion() Criterion {
	return linearize.DefaultCriterion()
}

// NewSubdivision returns the recursive subdivision linearization strategy.
func NewSubdivision(c Criterion) Strategy {
	return linearize.NewSubdivision(c, nil)
}

// NewCursor returns a pull cursor over r.
func NewCursor(r io.Reader) *Cursor {
	return xmlstream.NewCursor(r)
}

// NewSink returns a sink that serializes to w, binding the "gml" prefix to
// the namespace of d.
func NewSink(w io.Writer, d Dialect) *xmlstream.Writer {
	return xmlstream.NewWriter(w, d.Namespace())
}

// GeometryElements lists the geometry and envelope element names of d.
func GeometryElements(d Dialect) []string {
	return parser.GeometryElements(d)
}

// XY returns a 2D position.
func XY(x, y float64) Position { return geometry.XY(x, y) }

// XYZ returns a 3D position.
func XYZ(x, y, z float64) Position { return geometry.XYZ(x, y, z) }

// Bounds returns the envelope of g. ok is false when g has no resolvable
// positions.
func Bounds(g Geometry) (*Envelope, bool) {
	return geometry.Bounds(g)
}

// Equal reports whether two geometries have the same structure and
// coordinates.
func Equal(a, b Geometry) bool {
	return geometry.Equal(a, b)
}

// Decoder decodes the geometries of one document. Decode calls share a
// reference resolution context; use a new Decoder per document. A failed
// Decode leaves no registrations behind, but the cursor position is then
// unspecified. A Decoder is not safe for concurrent use.
type Decoder struct {
	dialect Dialect
	opts    DecodeOptions
	dec     *parser.Decoder
}

// NewDecoder returns a decoder for dialect d.
func NewDecoder(d Dialect, opts DecodeOptions) (*Decoder, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	dec, err := parser.New(d, parser.Options{
		Registry:    opts.Registry,
		Logger:      opts.Logger,
		ValidateIDs: opts.ValidateIDs,
		MaxDepth:    opts.MaxDepth,
	})
	if err != nil {
		return nil, err
	}
	return &Decoder{dialect: d, opts: opts, dec: dec}, nil
}

// Dialect returns the dialect the decoder reads.
func (d *Decoder) Dialect() Dialect { return d.dialect }

// Context returns the reference resolution context of the document.
func (d *Decoder) Context() *Context { return d.dec.Context() }

// IsGeometryElement reports whether name is a geometry or envelope element
// of the decoder's dialect.
func (d *Decoder) IsGeometryElement(name xml.Name) bool {
	return d.dec.IsGeometryElement(name)
}

// Decode decodes the geometry element the cursor is on. The cursor is left
// on the matching end tag.
func (d *Decoder) Decode(cur *Cursor) (Geometry, error) {
	return d.dec.Decode(cur, nil)
}

// DecodeInherited decodes like Decode for an element nested in one that
// declared the CRS inherited.
func (d *Decoder) DecodeInherited(cur *Cursor, inherited *CRS) (Geometry, error) {
	return d.dec.Decode(cur, inherited)
}

// ResolveLocalRefs binds every same-document reference decoded so far and
// runs the validation that was waiting on them.
func (d *Decoder) ResolveLocalRefs() error {
	return d.dec.ResolveLocalRefs()
}

// Encoder writes geometries in one dialect. It may be shared between
// goroutines.
type Encoder struct {
	enc *writer.Encoder
}

// NewEncoder returns an encoder for dialect d.
func NewEncoder(d Dialect, opts EncodeOptions) (*Encoder, error) {
	enc, err := writer.New(d, writer.Options{
		Strategy:    opts.Strategy,
		Logger:      opts.Logger,
		GenerateIDs: opts.GenerateIDs,
		IDGenerator: opts.IDGenerator,
		SRSName:     opts.SRSName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "gml")
	}
	return &Encoder{enc: enc}, nil
}

// Dialect returns the dialect the encoder writes.
func (e *Encoder) Dialect() Dialect { return e.enc.Dialect() }

// Encode writes g to sink. Nothing is written when encoding fails.
func (e *Encoder) Encode(sink Sink, g Geometry) error {
	return e.enc.Encode(sink, g)
}

// EncodeInherited writes g inside an element that already declared the CRS
// inherited.
func (e *Encoder) EncodeInherited(sink Sink, g Geometry, inherited *CRS) error {
	return e.enc.EncodeInherited(sink, g, inherited)
}
