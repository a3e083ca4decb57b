// Package geometry is the in-memory object model shared by the GML decoders
// and encoders.
//
// Values are built through the New* constructors, which enforce the
// structural rules (ring closure, non-empty aggregates, segment contiguity,
// consistent coordinate dimension). Fields are exported for reading; callers
// must treat a constructed geometry as immutable. The only mutation after
// construction is binding a Reference to its target, which the refs package
// performs during resolution.
package geometry

import (
	"github.com/beetlebugorg/gml/internal/crs"
)

// Geometry is implemented by every variant of the model.
type Geometry interface {
	// Kind returns the concrete variant. A resolved Reference reports the
	// kind of its target.
	Kind() Kind
	// ID returns the document identifier (gml:id or gid), or "".
	ID() string
	// CRS returns the effective coordinate reference system, or nil.
	CRS() *crs.CRS
	// Dimension returns the coordinate dimension (2 or 3), or 0 when unknown.
	Dimension() int
}

// Base carries the attributes shared by all identifiable geometries.
type Base struct {
	GID string
	SRS *crs.CRS
}

// ID implements Geometry.
func (b Base) ID() string { return b.GID }

// CRS implements Geometry.
func (b Base) CRS() *crs.CRS { return b.SRS }

// Point is a single position.
type Point struct {
	Base
	Pos Position
}

// NewPoint returns a point at pos.
func NewPoint(b Base, pos Position) (*Point, error) {
	if _, err := positionsDimension([]Position{pos}); err != nil {
		return nil, annotate(err, KindPoint, b)
	}
	return &Point{Base: b, Pos: pos}, nil
}

func (p *Point) Kind() Kind     { return KindPoint }
func (p *Point) Dimension() int { return p.Pos.Dim }

// Envelope is an axis aligned bounding box (gml:Envelope, gml:Box).
type Envelope struct {
	Base
	Min, Max Position
}

// NewEnvelope validates that min and max agree in dimension and that min does
// not exceed max on any axis.
func NewEnvelope(b Base, min, max Position) (*Envelope, error) {
	if _, err := positionsDimension([]Position{min, max}); err != nil {
		return nil, annotate(err, KindEnvelope, b)
	}
	if min.X > max.X || min.Y > max.Y || (min.Dim == 3 && min.Z > max.Z) {
		return nil, invalid(KindEnvelope, b, "lower corner %v exceeds upper corner %v", min, max)
	}
	return &Envelope{Base: b, Min: min, Max: max}, nil
}

func (e *Envelope) Kind() Kind     { return KindEnvelope }
func (e *Envelope) Dimension() int { return e.Min.Dim }

// Curvilinear is implemented by geometries with a start and an end position:
// curves, orientable curves, composite curves and rings.
type Curvilinear interface {
	Geometry
	StartPosition() Position
	EndPosition() Position
}

// Unwrap follows resolved references to the geometry they denote. It returns
// nil for an unresolved reference and stops on reference cycles.
func Unwrap(g Geometry) Geometry {
	seen := map[*Reference]bool{}
	for {
		r, ok := g.(*Reference)
		if !ok {
			return g
		}
		if seen[r] || r.target == nil {
			return nil
		}
		seen[r] = true
		g = r.target
	}
}

// Complete reports whether g is usable for checks that need its content: it
// is not an unresolved reference.
func Complete(g Geometry) bool {
	return Unwrap(g) != nil
}

// endpoints returns start and end of a curvilinear member, following
// references. ok is false if either end depends on an unresolved reference.
func endpoints(g Geometry) (start, end Position, ok bool) {
	if !endsResolved(g, 0) {
		return Position{}, Position{}, false
	}
	c, isCurve := Unwrap(g).(Curvilinear)
	if !isCurve {
		return Position{}, Position{}, false
	}
	return c.StartPosition(), c.EndPosition(), true
}

// endsResolved reports whether the first and last members along a curve
// chain are bound. depth bounds the walk on reference cycles.
func endsResolved(g Geometry, depth int) bool {
	if depth > 64 {
		return false
	}
	t := Unwrap(g)
	if t == nil {
		return false
	}
	if f := t.Kind().Family(); f != FamilyCurve && f != FamilyRing {
		return false
	}
	switch v := t.(type) {
	case *OrientableCurve:
		return endsResolved(v.BaseCurve, depth+1)
	case *Composite:
		return endsResolved(v.Members[0], depth+1) && endsResolved(v.Members[len(v.Members)-1], depth+1)
	case *Ring:
		return endsResolved(v.Members[0], depth+1) && endsResolved(v.Members[len(v.Members)-1], depth+1)
	}
	return true
}

// References returns the unresolved references reachable from g, following
// resolved references and skipping cycles.
func References(g Geometry) []*Reference {
	var out []*Reference
	seen := map[Geometry]bool{}
	var walk func(Geometry)
	walk = func(g Geometry) {
		if g == nil || seen[g] {
			return
		}
		seen[g] = true
		switch v := g.(type) {
		case *Reference:
			if v.target == nil {
				out = append(out, v)
				return
			}
			walk(v.target)
		case *OrientableCurve:
			walk(v.BaseCurve)
		case *Ring:
			for _, m := range v.Members {
				walk(m)
			}
		case *Surface:
			for _, p := range v.Patches {
				for _, r := range patchRings(p) {
					walk(r)
				}
			}
		case *OrientableSurface:
			walk(v.BaseSurface)
		case *Solid:
			walk(v.Exterior)
			for _, s := range v.Interiors {
				walk(s)
			}
		case *Composite:
			for _, m := range v.Members {
				walk(m)
			}
		case *Multi:
			for _, m := range v.Members {
				walk(m)
			}
		}
	}
	walk(g)
	return out
}

// dimensionOf returns the coordinate dimension of g, looking through
// references and through aggregates whose members were unresolved when they
// were built. Zero means no reachable member is resolved yet.
func dimensionOf(g Geometry, seen map[Geometry]bool) int {
	if g == nil || seen[g] {
		return 0
	}
	seen[g] = true
	switch v := g.(type) {
	case *Reference:
		return dimensionOf(v.target, seen)
	case *OrientableCurve:
		return dimensionOf(v.BaseCurve, seen)
	case *OrientableSurface:
		return dimensionOf(v.BaseSurface, seen)
	case *Ring:
		return firstDimension(v.dim, v.Members, seen)
	case *Composite:
		return firstDimension(v.dim, v.Members, seen)
	case *Multi:
		return firstDimension(v.dim, v.Members, seen)
	case *Solid:
		return firstDimension(v.dim, append([]Geometry{v.Exterior}, v.Interiors...), seen)
	case *Surface:
		if v.dim != 0 {
			return v.dim
		}
		for _, p := range v.Patches {
			for _, r := range patchRings(p) {
				if d := dimensionOf(r, seen); d != 0 {
					return d
				}
			}
		}
		return 0
	}
	return g.Dimension()
}

func firstDimension(dim int, members []Geometry, seen map[Geometry]bool) int {
	if dim != 0 {
		return dim
	}
	for _, m := range members {
		if d := dimensionOf(m, seen); d != 0 {
			return d
		}
	}
	return 0
}

// checkDimensions requires every resolved member to share one dimension.
// Unresolved members are skipped.
func checkDimensions(kind Kind, b Base, members []Geometry) error {
	dim := 0
	for i, m := range members {
		d := dimensionOf(m, map[Geometry]bool{})
		var err error
		if dim, err = mergeDimension(dim, d); err != nil {
			return invalid(kind, b, "member %d has dimension %d, expected %d", i, d, dim)
		}
	}
	return nil
}

// checkMembers validates family membership and dimension agreement of a
// member list and returns the common dimension.
func checkMembers(kind Kind, b Base, members []Geometry, accepts func(Kind) bool) (int, error) {
	dim := 0
	for i, m := range members {
		if m == nil {
			return 0, invalid(kind, b, "member %d is nil", i)
		}
		if r, ok := m.(*Reference); ok && !r.Resolved() {
			continue
		}
		if !accepts(m.Kind()) {
			return 0, invalid(kind, b, "member %d of kind %v is not allowed", i, m.Kind())
		}
		var err error
		if dim, err = mergeDimension(dim, m.Dimension()); err != nil {
			return 0, annotate(err, kind, b)
		}
	}
	return dim, nil
}
