package geometry

// Solid is a volume bounded by an exterior shell and optional interior
// shells. Shells are surface-family geometries.
type Solid struct {
	Base
	Exterior  Geometry
	Interiors []Geometry

	dim int
}

func NewSolid(b Base, exterior Geometry, interiors []Geometry) (*Solid, error) {
	if exterior == nil {
		return nil, invalid(KindSolid, b, "missing exterior shell")
	}
	dim, err := checkMembers(KindSolid, b, append([]Geometry{exterior}, interiors...), FamilySurface.Accepts)
	if err != nil {
		return nil, err
	}
	return &Solid{Base: b, Exterior: exterior, Interiors: interiors, dim: dim}, nil
}

func (s *Solid) Kind() Kind     { return KindSolid }
func (s *Solid) Dimension() int { return dimensionOf(s, map[Geometry]bool{}) }

// Validate checks the dimensions of shells that were references when the
// solid was built.
func (s *Solid) Validate() error {
	return checkDimensions(KindSolid, s.Base, append([]Geometry{s.Exterior}, s.Interiors...))
}

// Composite is a CompositeCurve, CompositeSurface, CompositeSolid or
// GeometricComplex. The homogeneous kinds require contiguous members.
type Composite struct {
	Base
	Members []Geometry

	kind Kind
	dim  int
}

var compositeFamily = map[Kind]Family{
	KindCompositeCurve:   FamilyCurve,
	KindCompositeSurface: FamilySurface,
	KindCompositeSolid:   FamilySolid,
	KindGeometricComplex: FamilyAny,
}

// NewComposite checks family membership, dimension and contiguity of the
// members that are already resolved. Call Validate after reference
// resolution to check the rest.
func NewComposite(b Base, kind Kind, members []Geometry) (*Composite, error) {
	fam, ok := compositeFamily[kind]
	if !ok {
		return nil, invalid(kind, b, "not a composite kind")
	}
	if len(members) == 0 {
		return nil, invalid(kind, b, "no members")
	}
	accepts := fam.Accepts
	if kind == KindGeometricComplex {
		accepts = func(k Kind) bool {
			f := k.Family()
			return f == FamilyPoint || f == FamilyCurve || f == FamilySurface || f == FamilySolid
		}
	}
	dim, err := checkMembers(kind, b, members, accepts)
	if err != nil {
		return nil, err
	}
	c := &Composite{Base: b, Members: members, kind: kind, dim: dim}
	if err := c.checkContiguity(false); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Composite) Kind() Kind     { return c.kind }
func (c *Composite) Dimension() int { return dimensionOf(c, map[Geometry]bool{}) }

// StartPosition returns the start of the first member of a CompositeCurve.
func (c *Composite) StartPosition() Position {
	start, _, _ := endpoints(c.Members[0])
	return start
}

// EndPosition returns the end of the last member of a CompositeCurve.
func (c *Composite) EndPosition() Position {
	_, end, _ := endpoints(c.Members[len(c.Members)-1])
	return end
}

// Validate repeats the dimension and contiguity checks with every member
// required to be resolved.
func (c *Composite) Validate() error {
	if err := checkDimensions(c.kind, c.Base, c.Members); err != nil {
		return err
	}
	return c.checkContiguity(true)
}

func (c *Composite) checkContiguity(strict bool) error {
	switch c.kind {
	case KindCompositeCurve:
		return checkChain(c.kind, c.Base, c.Members, false, strict)
	case KindCompositeSurface, KindCompositeSolid:
		return checkSharedEdges(c.kind, c.Base, c.Members, strict)
	}
	return nil
}

// checkSharedEdges requires every member after the first to share at least
// one boundary edge with a member before it.
func checkSharedEdges(kind Kind, b Base, members []Geometry, strict bool) error {
	seen := map[edge]bool{}
	for i, m := range members {
		edges, ok := boundaryEdges(m, map[Geometry]bool{})
		if !ok {
			if strict {
				return invalid(kind, b, "member %d is unresolved", i)
			}
			continue
		}
		if i > 0 && len(seen) > 0 {
			shared := false
			for e := range edges {
				if seen[e] {
					shared = true
					break
				}
			}
			if !shared {
				return invalid(kind, b, "member %d shares no boundary edge with the preceding members", i)
			}
		}
		for e := range edges {
			seen[e] = true
		}
	}
	return nil
}

// edge is an undirected pair of boundary vertices.
type edge struct {
	a, b Position
}

func newEdge(p, q Position) edge {
	if q.X < p.X || (q.X == p.X && (q.Y < p.Y || (q.Y == p.Y && q.Z < p.Z))) {
		p, q = q, p
	}
	return edge{a: p, b: q}
}

// boundaryEdges collects the vertex-to-vertex edges of the rings bounding a
// surface or solid. Non-linear members contribute their segment end points.
func boundaryEdges(g Geometry, visited map[Geometry]bool) (map[edge]bool, bool) {
	t := Unwrap(g)
	if t == nil {
		return nil, false
	}
	if visited[t] {
		return map[edge]bool{}, true
	}
	visited[t] = true

	out := map[edge]bool{}
	addRing := func(r *Ring) bool {
		pts, ok := ringVertices(r)
		if !ok {
			return false
		}
		for i := 0; i+1 < len(pts); i++ {
			out[newEdge(pts[i], pts[i+1])] = true
		}
		return true
	}
	addAll := func(gs ...Geometry) bool {
		for _, m := range gs {
			edges, ok := boundaryEdges(m, visited)
			if !ok {
				return false
			}
			for e := range edges {
				out[e] = true
			}
		}
		return true
	}

	switch v := t.(type) {
	case *Surface:
		for _, p := range v.Patches {
			for _, r := range patchRings(p) {
				if !addRing(r) {
					return nil, false
				}
			}
		}
	case *OrientableSurface:
		if !addAll(v.BaseSurface) {
			return nil, false
		}
	case *Composite:
		if !addAll(v.Members...) {
			return nil, false
		}
	case *Solid:
		if !addAll(append([]Geometry{v.Exterior}, v.Interiors...)...) {
			return nil, false
		}
	default:
		return nil, false
	}
	return out, true
}

func patchRings(p Patch) []*Ring {
	switch v := p.(type) {
	case *PolygonPatch:
		return v.Rings()
	case *Triangle:
		return []*Ring{v.Exterior}
	case *Rectangle:
		return []*Ring{v.Exterior}
	case *GriddedPatch:
		r, err := NewLinearRing(Base{}, v.Boundary())
		if err != nil {
			return nil
		}
		return []*Ring{r}
	}
	return nil
}

// ringVertices returns the linear positions of r, or the chain of member
// and segment end points when r has curved members.
func ringVertices(r *Ring) ([]Position, bool) {
	if pts, ok := r.Positions(); ok {
		return pts, true
	}
	var pts []Position
	for _, m := range r.Members {
		c, ok := Unwrap(m).(*Curve)
		if !ok {
			start, end, resolved := endpoints(m)
			if !resolved {
				return nil, false
			}
			pts = appendChained(pts, []Position{start, end})
			continue
		}
		for _, s := range c.Segments {
			pts = appendChained(pts, []Position{s.StartPosition(), s.EndPosition()})
		}
	}
	return pts, true
}

// Multi is an unordered-by-meaning but order-preserving collection of
// member geometries. Members may be empty.
type Multi struct {
	Base
	Members []Geometry

	kind Kind
	dim  int
}

var multiAccepts = map[Kind]func(Kind) bool{
	KindMultiPoint:      FamilyPoint.Accepts,
	KindMultiCurve:      FamilyCurve.Accepts,
	KindMultiLineString: func(k Kind) bool { return k == KindLineString },
	KindMultiSurface:    FamilySurface.Accepts,
	KindMultiPolygon:    func(k Kind) bool { return k == KindPolygon },
	KindMultiSolid:      FamilySolid.Accepts,
	KindMultiGeometry:   FamilyAny.Accepts,
}

func NewMulti(b Base, kind Kind, members []Geometry) (*Multi, error) {
	accepts, ok := multiAccepts[kind]
	if !ok {
		return nil, invalid(kind, b, "not a multi geometry kind")
	}
	dim, err := checkMembers(kind, b, members, accepts)
	if err != nil {
		return nil, err
	}
	return &Multi{Base: b, Members: members, kind: kind, dim: dim}, nil
}

func (m *Multi) Kind() Kind     { return m.kind }
func (m *Multi) Dimension() int { return dimensionOf(m, map[Geometry]bool{}) }

// Validate checks the dimensions of members that were references when the
// aggregate was built. Members still unresolved are skipped.
func (m *Multi) Validate() error {
	return checkDimensions(m.kind, m.Base, m.Members)
}

// MemberFamily returns the family a member of an aggregate of this kind
// must belong to.
func MemberFamily(kind Kind) Family {
	switch kind {
	case KindMultiPoint:
		return FamilyPoint
	case KindMultiCurve, KindMultiLineString, KindCompositeCurve:
		return FamilyCurve
	case KindMultiSurface, KindMultiPolygon, KindCompositeSurface:
		return FamilySurface
	case KindMultiSolid, KindCompositeSolid:
		return FamilySolid
	default:
		return FamilyAny
	}
}

// Validator is implemented by geometries whose full validation has to wait
// until references are bound.
type Validator interface {
	Validate() error
}

var (
	_ Validator = (*Ring)(nil)
	_ Validator = (*Composite)(nil)
	_ Validator = (*Multi)(nil)
	_ Validator = (*Solid)(nil)
)
