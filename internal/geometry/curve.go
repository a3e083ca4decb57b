package geometry

// CurveType classifies the content of a curve-family geometry.
type CurveType int

const (
	CurveTypeLineString CurveType = iota + 1 // only linear segments
	CurveTypeSegmented                       // at least one non-linear segment
	CurveTypeOrientable
	CurveTypeComposite
)

// Curve is a sequence of contiguous segments. A Curve built by NewLineString
// reports KindLineString.
type Curve struct {
	Base
	Segments []Segment

	lineString bool
	dim        int
}

// NewLineString returns a linear curve through pts.
func NewLineString(b Base, pts []Position) (*Curve, error) {
	seg, err := NewLineStringSegment(pts)
	if err != nil {
		return nil, annotate(err, KindLineString, b)
	}
	return &Curve{Base: b, Segments: []Segment{seg}, lineString: true, dim: seg.Dimension()}, nil
}

// NewCurve returns a curve over segs. Each segment must start where the
// previous one ended.
func NewCurve(b Base, segs []Segment) (*Curve, error) {
	if len(segs) == 0 {
		return nil, invalid(KindCurve, b, "no segments")
	}
	dim := 0
	for i, s := range segs {
		var err error
		if dim, err = mergeDimension(dim, s.Dimension()); err != nil {
			return nil, annotate(err, KindCurve, b)
		}
		if i > 0 && !segs[i-1].EndPosition().Coincident(s.StartPosition()) {
			return nil, invalid(KindCurve, b, "segment %d (%v) starts at %v but segment %d ends at %v",
				i, s.SegmentKind(), s.StartPosition(), i-1, segs[i-1].EndPosition())
		}
	}
	return &Curve{Base: b, Segments: segs, dim: dim}, nil
}

func (c *Curve) Kind() Kind {
	if c.lineString {
		return KindLineString
	}
	return KindCurve
}

func (c *Curve) Dimension() int          { return c.dim }
func (c *Curve) StartPosition() Position { return c.Segments[0].StartPosition() }
func (c *Curve) EndPosition() Position   { return c.Segments[len(c.Segments)-1].EndPosition() }

// CurveType reports whether the curve is made of linear segments only.
func (c *Curve) CurveType() CurveType {
	for _, s := range c.Segments {
		if s.SegmentKind() != SegmentLineString {
			return CurveTypeSegmented
		}
	}
	return CurveTypeLineString
}

// Positions concatenates the positions of a purely linear curve, dropping
// the duplicated junction positions. ok is false when any segment is not a
// LineStringSegment.
func (c *Curve) Positions() (pts []Position, ok bool) {
	for _, s := range c.Segments {
		ls, isLinear := s.(*LineStringSegment)
		if !isLinear {
			return nil, false
		}
		pts = appendChained(pts, ls.Points)
	}
	return pts, true
}

func appendChained(dst, src []Position) []Position {
	if len(dst) > 0 && len(src) > 0 && dst[len(dst)-1].Equal(src[0]) {
		src = src[1:]
	}
	return append(dst, src...)
}

// OrientableCurve traverses BaseCurve forwards (Positive) or backwards.
type OrientableCurve struct {
	Base
	BaseCurve Geometry
	Positive  bool
}

func NewOrientableCurve(b Base, base Geometry, positive bool) (*OrientableCurve, error) {
	if base == nil {
		return nil, invalid(KindOrientableCurve, b, "missing base curve")
	}
	if _, err := checkMembers(KindOrientableCurve, b, []Geometry{base}, FamilyCurve.Accepts); err != nil {
		return nil, err
	}
	return &OrientableCurve{Base: b, BaseCurve: base, Positive: positive}, nil
}

func (c *OrientableCurve) Kind() Kind { return KindOrientableCurve }

func (c *OrientableCurve) Dimension() int { return dimensionOf(c, map[Geometry]bool{}) }

func (c *OrientableCurve) StartPosition() Position {
	start, end, _ := endpoints(c.BaseCurve)
	if c.Positive {
		return start
	}
	return end
}

func (c *OrientableCurve) EndPosition() Position {
	start, end, _ := endpoints(c.BaseCurve)
	if c.Positive {
		return end
	}
	return start
}

// Ring is a closed chain of curve members. NewLinearRing produces a ring
// with a single LineString member that reports KindLinearRing.
type Ring struct {
	Base
	Members []Geometry

	linear bool
	dim    int
}

// NewLinearRing requires at least four positions of one dimension with the
// last exactly equal to the first.
func NewLinearRing(b Base, pts []Position) (*Ring, error) {
	if len(pts) < 4 {
		return nil, invalid(KindLinearRing, b, "needs at least 4 positions, got %d", len(pts))
	}
	seg, err := NewLineStringSegment(pts)
	if err != nil {
		return nil, annotate(err, KindLinearRing, b)
	}
	if !pts[0].Equal(pts[len(pts)-1]) {
		return nil, invalid(KindLinearRing, b, "not closed: first position %v, last position %v",
			pts[0], pts[len(pts)-1])
	}
	ls := &Curve{Base: Base{SRS: b.SRS}, Segments: []Segment{seg}, lineString: true, dim: seg.Dimension()}
	return &Ring{Base: b, Members: []Geometry{ls}, linear: true, dim: ls.Dimension()}, nil
}

// NewRing builds a ring from curve members. Members that are unresolved
// references are skipped by the contiguity and closure checks; call Validate
// once they are bound.
func NewRing(b Base, members []Geometry) (*Ring, error) {
	if len(members) == 0 {
		return nil, invalid(KindRing, b, "no curve members")
	}
	dim, err := checkMembers(KindRing, b, members, FamilyCurve.Accepts)
	if err != nil {
		return nil, err
	}
	r := &Ring{Base: b, Members: members, dim: dim}
	if err := checkChain(KindRing, b, members, true, false); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Ring) Kind() Kind {
	if r.linear {
		return KindLinearRing
	}
	return KindRing
}

func (r *Ring) Dimension() int { return dimensionOf(r, map[Geometry]bool{}) }

func (r *Ring) StartPosition() Position {
	start, _, _ := endpoints(r.Members[0])
	return start
}

func (r *Ring) EndPosition() Position {
	_, end, _ := endpoints(r.Members[len(r.Members)-1])
	return end
}

// Validate checks contiguity and closure over all members. It fails if any
// member is still an unresolved reference.
func (r *Ring) Validate() error {
	return checkChain(r.Kind(), r.Base, r.Members, true, true)
}

// Positions concatenates the positions of a ring whose members are all
// linear. ok is false otherwise.
func (r *Ring) Positions() (pts []Position, ok bool) {
	for _, m := range r.Members {
		mp, isLinear := linearPositions(m)
		if !isLinear {
			return nil, false
		}
		pts = appendChained(pts, mp)
	}
	return pts, true
}

// Reversed returns the ring traversed in the opposite direction. A linear
// ring is reversed in place of its positions; other rings wrap each member
// in a negative OrientableCurve.
func (r *Ring) Reversed() *Ring {
	if r.linear {
		pts, _ := r.Positions()
		out, _ := NewLinearRing(r.Base, Reversed(pts))
		return out
	}
	members := make([]Geometry, len(r.Members))
	for i, m := range r.Members {
		members[len(members)-1-i] = &OrientableCurve{BaseCurve: m, Positive: false}
	}
	return &Ring{Base: r.Base, Members: members, dim: r.dim}
}

// linearPositions returns the positions of a curve-family geometry if it is
// made of linear segments only.
func linearPositions(g Geometry) ([]Position, bool) {
	switch c := Unwrap(g).(type) {
	case *Curve:
		return c.Positions()
	case *OrientableCurve:
		pts, ok := linearPositions(c.BaseCurve)
		if !ok || c.Positive {
			return pts, ok
		}
		return Reversed(pts), true
	case *Composite:
		var pts []Position
		for _, m := range c.Members {
			mp, ok := linearPositions(m)
			if !ok {
				return nil, false
			}
			pts = appendChained(pts, mp)
		}
		return pts, true
	default:
		return nil, false
	}
}

// checkChain verifies that each member ends where the next begins and, if
// closed, that the last ends exactly where the first begins. With strict set an
// unresolved member is an error; otherwise the comparisons touching it are
// skipped.
func checkChain(kind Kind, b Base, members []Geometry, closed, strict bool) error {
	n := len(members)
	pairs := n - 1
	if closed {
		pairs = n
	}
	for i := 0; i < pairs; i++ {
		j := (i + 1) % n
		_, end, okA := endpoints(members[i])
		start, _, okB := endpoints(members[j])
		if !okA || !okB {
			if strict {
				idx := i
				if okA {
					idx = j
				}
				return invalid(kind, b, "member %d is unresolved", idx)
			}
			continue
		}
		if closed && j == 0 {
			if !end.Equal(start) {
				return invalid(kind, b, "not closed: ends at %v but starts at %v", end, start)
			}
			continue
		}
		if !end.Coincident(start) {
			return invalid(kind, b, "gap between member %d ending at %v and member %d starting at %v",
				i, end, j, start)
		}
	}
	return nil
}

// CurveTypeOf classifies any curve-family geometry.
func CurveTypeOf(g Geometry) CurveType {
	switch c := Unwrap(g).(type) {
	case *Curve:
		return c.CurveType()
	case *OrientableCurve:
		return CurveTypeOrientable
	case *Composite:
		return CurveTypeComposite
	default:
		return 0
	}
}
