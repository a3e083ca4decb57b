// Package writer encodes geometry values as GML 2.1.2, 3.1.1 or 3.2.1
// elements into an xmlstream.Sink.
//
// The encoder mirrors the parser: an srsName is written only where it
// differs from the nearest CRS already written by an enclosing element, and
// references are written as xlink:href properties. Constructs the target
// dialect cannot express are linearized when a strategy is configured and
// rejected with *ErrUnsupported otherwise.
package writer

import (
	"strconv"
	"strings"

	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/linearize"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options configures encoding behavior
type Options struct {
	// Strategy linearizes curves and patches the dialect cannot express.
	// Nil rejects them with *ErrUnsupported.
	Strategy linearize.Strategy

	// Logger receives debug output about linearized geometries.
	// Nil uses the logrus standard logger.
	Logger logrus.FieldLogger

	// GenerateIDs: if true, GML 3.2 geometries without an identifier get a
	// generated gml:id
	// Default: true
	GenerateIDs bool

	// IDGenerator returns fresh identifiers. Nil uses "GEOMETRY_" followed
	// by a random UUID.
	IDGenerator func() string

	// SRSName formats the srsName attribute. Nil writes "EPSG:4326" style
	// identifiers for GML 2 and URNs for GML 3.
	SRSName func(c *crs.CRS) string
}

// DefaultOptions returns encode options with defaults
func DefaultOptions() Options {
	return Options{
		GenerateIDs: true,
	}
}

// Encoder writes geometries in one dialect. It holds no per-document state
// and may be shared between goroutines when its IDGenerator is safe for
// concurrent use.
type Encoder struct {
	dialect  dialect.Dialect
	ns       string
	opts     Options
	log      logrus.FieldLogger
	strategy linearize.Strategy
	body     encodeFunc
}

type encodeFunc func(s *session, g geometry.Geometry, anc *crs.CRS) error

// encoders selects the element vocabulary of each dialect.
var encoders = map[dialect.Dialect]encodeFunc{
	dialect.GML2:  encodeGML2,
	dialect.GML31: encodeGML3,
	dialect.GML32: encodeGML3,
}

// New returns an encoder for dialect d.
func New(d dialect.Dialect, opts Options) (*Encoder, error) {
	body, ok := encoders[d]
	if !ok {
		return nil, errors.Newf("writer: unsupported dialect %v", d)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = func() string { return "GEOMETRY_" + uuid.New().String() }
	}
	if opts.SRSName == nil {
		if d == dialect.GML2 {
			opts.SRSName = (*crs.CRS).ID
		} else {
			opts.SRSName = (*crs.CRS).URN
		}
	}
	e := &Encoder{
		dialect:  d,
		ns:       d.Namespace(),
		opts:     opts,
		log:      opts.Logger.WithField("dialect", d.String()),
		strategy: opts.Strategy,
		body:     body,
	}
	if e.strategy == nil {
		e.strategy = exact{dialect: d}
	}
	return e, nil
}

// Dialect returns the dialect the encoder writes.
func (e *Encoder) Dialect() dialect.Dialect { return e.dialect }

// Encode writes g as a standalone element and flushes the sink.
func (e *Encoder) Encode(sink xmlstream.Sink, g geometry.Geometry) error {
	return e.EncodeInherited(sink, g, nil)
}

// EncodeInherited writes g inside an element that already declared the CRS
// inherited, so srsName is omitted when g uses the same system. Nothing is
// written to sink when encoding fails.
func (e *Encoder) EncodeInherited(sink xmlstream.Sink, g geometry.Geometry, inherited *crs.CRS) error {
	if g == nil {
		return errors.New("writer: nil geometry")
	}
	s := &session{enc: e}
	if err := e.body(s, g, inherited); err != nil {
		return err
	}
	if err := s.replay(sink); err != nil {
		return errors.Wrapf(err, "writing gml:%s", g.Kind())
	}
	return sink.Flush()
}

// exact is the strategy used when none is configured. It passes linear
// content through and rejects everything else.
type exact struct {
	dialect dialect.Dialect
}

func (x exact) Segment(seg geometry.Segment) (*geometry.LineStringSegment, error) {
	if ls, ok := seg.(*geometry.LineStringSegment); ok {
		return ls, nil
	}
	return nil, &ErrUnsupported{
		Kind:    seg.SegmentKind().String(),
		Dialect: x.dialect,
		Reason:  "curved segments need a linearization strategy",
	}
}

func (x exact) Patch(p geometry.Patch) (*geometry.PolygonPatch, error) {
	pp, ok := p.(*geometry.PolygonPatch)
	if !ok {
		return nil, &ErrUnsupported{
			Kind:    p.PatchKind().String(),
			Dialect: x.dialect,
			Reason:  "non-polygon patches need a linearization strategy",
		}
	}
	ext, err := linearize.Ring(x, pp.Exterior)
	if err != nil {
		return nil, err
	}
	ints := make([]*geometry.Ring, len(pp.Interiors))
	for i, r := range pp.Interiors {
		if ints[i], err = linearize.Ring(x, r); err != nil {
			return nil, err
		}
	}
	return geometry.NewPolygonPatch(ext, ints)
}

type eventOp int

const (
	opStart eventOp = iota
	opAttr
	opText
	opEnd
)

type event struct {
	op    eventOp
	space string
	local string
	value string
}

// session records the events of one Encode call. They reach the sink only
// once the whole geometry has been encoded.
type session struct {
	enc    *Encoder
	events []event
}

func (s *session) start(local string) {
	s.events = append(s.events, event{op: opStart, space: s.enc.ns, local: local})
}

func (s *session) attr(space, local, value string) {
	s.events = append(s.events, event{op: opAttr, space: space, local: local, value: value})
}

func (s *session) text(v string) {
	s.events = append(s.events, event{op: opText, value: v})
}

func (s *session) end() {
	s.events = append(s.events, event{op: opEnd})
}

// leaf writes an element holding only text.
func (s *session) leaf(local, v string) {
	s.start(local)
	s.text(v)
	s.end()
}

func (s *session) replay(sink xmlstream.Sink) error {
	for _, ev := range s.events {
		var err error
		switch ev.op {
		case opStart:
			err = sink.StartElement(ev.space, ev.local)
		case opAttr:
			err = sink.Attr(ev.space, ev.local, ev.value)
		case opText:
			err = sink.Text(ev.value)
		case opEnd:
			err = sink.EndElement()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// open starts the element of g and writes its identifier and srsName. It
// returns the CRS in effect for the children.
func (s *session) open(local string, g geometry.Geometry, anc *crs.CRS) *crs.CRS {
	s.start(local)
	s.id(g.ID())
	return s.srs(g.CRS(), anc)
}

func (s *session) id(id string) {
	switch {
	case s.enc.dialect == dialect.GML2:
		if id != "" {
			s.attr("", "gid", id)
		}
	case id != "":
		s.attr(s.enc.ns, "id", id)
	case s.enc.dialect == dialect.GML32 && s.enc.opts.GenerateIDs:
		s.attr(s.enc.ns, "id", s.enc.opts.IDGenerator())
	}
}

func (s *session) srs(own, anc *crs.CRS) *crs.CRS {
	if c := crs.Emit(own, anc); c != nil {
		s.attr("", "srsName", s.enc.opts.SRSName(c))
		return c
	}
	return anc
}

// property writes a geometry property. References keep their href so shared
// geometries stay shared in the output.
func (s *session) property(local string, g geometry.Geometry, anc *crs.CRS) error {
	s.start(local)
	if ref, ok := g.(*geometry.Reference); ok {
		s.attr(xmlstream.NamespaceXLink, "href", ref.Href)
		s.end()
		return nil
	}
	if err := s.enc.body(s, g, anc); err != nil {
		return err
	}
	s.end()
	return nil
}

// target returns the bound geometry of a top level reference.
func (s *session) target(r *geometry.Reference) (geometry.Geometry, error) {
	if t := r.Target(); t != nil {
		return t, nil
	}
	return nil, &ErrUnsupported{
		Kind:    geometry.KindReference.String(),
		Dialect: s.enc.dialect,
		Reason:  "unresolved reference " + strconv.Quote(r.Href) + " has no element of its own",
	}
}

func (s *session) unsupported(g geometry.Geometry, reason string) error {
	return &ErrUnsupported{Kind: g.Kind().String(), Dialect: s.enc.dialect, Reason: reason}
}

func (s *session) posList(pts []geometry.Position) {
	s.start("posList")
	if len(pts) > 0 && pts[0].Dim == 3 {
		s.attr("", "srsDimension", "3")
	}
	s.text(formatPositions(pts, " ", " "))
	s.end()
}

func (s *session) pos(local string, p geometry.Position) {
	s.leaf(local, formatPositions([]geometry.Position{p}, " ", " "))
}

// coordinates writes the GML 2 tuple syntax with the default separators.
func (s *session) coordinates(pts []geometry.Position) {
	s.start("coordinates")
	s.attr("", "decimal", ".")
	s.attr("", "cs", ",")
	s.attr("", "ts", " ")
	s.text(formatPositions(pts, ",", " "))
	s.end()
}

func (s *session) measure(local string, m geometry.Measure) {
	s.start(local)
	if m.UOM != "" {
		s.attr("", "uom", m.UOM)
	}
	s.text(formatFloat(m.Value))
	s.end()
}

func (s *session) vector(local string, v []float64) {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	s.leaf(local, strings.Join(parts, " "))
}

func formatPositions(pts []geometry.Position, cs, ts string) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteString(ts)
		}
		for j, v := range p.Ordinates() {
			if j > 0 {
				b.WriteString(cs)
			}
			b.WriteString(formatFloat(v))
		}
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orientation(positive bool) string {
	if positive {
		return "+"
	}
	return "-"
}
