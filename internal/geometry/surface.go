package geometry

import (
	"fmt"
)

// Patch is one piece of a Surface.
type Patch interface {
	PatchKind() PatchKind
	Dimension() int
}

// PolygonPatch is a planar patch bounded by one exterior and zero or more
// interior rings.
type PolygonPatch struct {
	Exterior  *Ring
	Interiors []*Ring
}

func NewPolygonPatch(exterior *Ring, interiors []*Ring) (*PolygonPatch, error) {
	if exterior == nil {
		return nil, &ErrInvalidGeometry{Reason: "polygon patch without exterior ring"}
	}
	dim := exterior.Dimension()
	for i, r := range interiors {
		if r == nil {
			return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf("interior ring %d is nil", i)}
		}
		var err error
		if dim, err = mergeDimension(dim, r.Dimension()); err != nil {
			return nil, err
		}
	}
	return &PolygonPatch{Exterior: exterior, Interiors: interiors}, nil
}

func (p *PolygonPatch) PatchKind() PatchKind { return PatchPolygon }
func (p *PolygonPatch) Dimension() int       { return p.Exterior.Dimension() }

// Rings returns the exterior followed by the interiors.
func (p *PolygonPatch) Rings() []*Ring {
	return append([]*Ring{p.Exterior}, p.Interiors...)
}

// Triangle is a patch bounded by a linear ring of four positions.
type Triangle struct {
	Exterior *Ring
}

func NewTriangle(exterior *Ring) (*Triangle, error) {
	if err := checkLinearRingSize(exterior, 4, PatchTriangle); err != nil {
		return nil, err
	}
	return &Triangle{Exterior: exterior}, nil
}

func (p *Triangle) PatchKind() PatchKind { return PatchTriangle }
func (p *Triangle) Dimension() int       { return p.Exterior.Dimension() }

// Rectangle is a patch bounded by a linear ring of five positions.
type Rectangle struct {
	Exterior *Ring
}

func NewRectangle(exterior *Ring) (*Rectangle, error) {
	if err := checkLinearRingSize(exterior, 5, PatchRectangle); err != nil {
		return nil, err
	}
	return &Rectangle{Exterior: exterior}, nil
}

func (p *Rectangle) PatchKind() PatchKind { return PatchRectangle }
func (p *Rectangle) Dimension() int       { return p.Exterior.Dimension() }

func checkLinearRingSize(r *Ring, n int, kind PatchKind) error {
	if r == nil {
		return &ErrInvalidGeometry{Reason: fmt.Sprintf("%v without exterior ring", kind)}
	}
	pts, ok := r.Positions()
	if !ok || len(pts) != n {
		return &ErrInvalidGeometry{Reason: fmt.Sprintf("%v exterior must be a linear ring of %d positions", kind, n)}
	}
	return nil
}

// GriddedPatch is a Cone, Cylinder or Sphere given as rows of positions on
// the surface. All rows have the same length.
type GriddedPatch struct {
	Kind                    PatchKind
	Rows                    [][]Position
	HorizontalInterpolation string
	VerticalInterpolation   string
}

func NewGriddedPatch(kind PatchKind, rows [][]Position) (*GriddedPatch, error) {
	if kind != PatchCone && kind != PatchCylinder && kind != PatchSphere {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf("%v is not a gridded patch", kind)}
	}
	if len(rows) < 2 {
		return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf("%v needs at least 2 rows, got %d", kind, len(rows))}
	}
	dim := 0
	for i, row := range rows {
		if len(row) < 2 || len(row) != len(rows[0]) {
			return nil, &ErrInvalidGeometry{Reason: fmt.Sprintf(
				"%v row %d has %d positions, expected %d (at least 2)", kind, i, len(row), len(rows[0]))}
		}
		d, err := positionsDimension(row)
		if err != nil {
			return nil, err
		}
		if dim, err = mergeDimension(dim, d); err != nil {
			return nil, err
		}
	}
	return &GriddedPatch{
		Kind:                    kind,
		Rows:                    rows,
		HorizontalInterpolation: "circularArc3Points",
		VerticalInterpolation:   "linear",
	}, nil
}

func (p *GriddedPatch) PatchKind() PatchKind { return p.Kind }
func (p *GriddedPatch) Dimension() int       { return p.Rows[0][0].Dim }

// Boundary returns the closed outline of the grid: first row, last column,
// last row reversed, first column reversed.
func (p *GriddedPatch) Boundary() []Position {
	last := len(p.Rows) - 1
	width := len(p.Rows[0])
	var out []Position
	out = append(out, p.Rows[0]...)
	for i := 1; i <= last; i++ {
		out = append(out, p.Rows[i][width-1])
	}
	for j := width - 2; j >= 0; j-- {
		out = append(out, p.Rows[last][j])
	}
	for i := last - 1; i >= 0; i-- {
		out = append(out, p.Rows[i][0])
	}
	return out
}

// TinParameters carries the Tin specific properties. Triangles are derived
// from ControlPoints by the producer; MaxLength is kept as given.
type TinParameters struct {
	StopLines     [][]*LineStringSegment
	BreakLines    [][]*LineStringSegment
	MaxLength     Measure
	ControlPoints []Position
}

// Surface covers Polygon, Surface, PolyhedralSurface, TriangulatedSurface
// and Tin. Kind distinguishes them.
type Surface struct {
	Base
	Patches []Patch
	Tin     *TinParameters

	kind Kind
	dim  int
}

// NewPolygon returns a single patch surface of KindPolygon.
func NewPolygon(b Base, exterior *Ring, interiors []*Ring) (*Surface, error) {
	p, err := NewPolygonPatch(exterior, interiors)
	if err != nil {
		return nil, annotate(err, KindPolygon, b)
	}
	return &Surface{Base: b, Patches: []Patch{p}, kind: KindPolygon, dim: p.Dimension()}, nil
}

// NewSurface returns a Surface, PolyhedralSurface or TriangulatedSurface.
// Polyhedral surfaces take polygon patches only, triangulated surfaces
// triangles only.
func NewSurface(b Base, kind Kind, patches []Patch) (*Surface, error) {
	switch kind {
	case KindSurface, KindPolyhedralSurface, KindTriangulatedSurface:
	default:
		return nil, invalid(kind, b, "not a patch based surface kind")
	}
	if len(patches) == 0 {
		return nil, invalid(kind, b, "no patches")
	}
	dim, err := checkPatches(kind, b, patches)
	if err != nil {
		return nil, err
	}
	return &Surface{Base: b, Patches: patches, kind: kind, dim: dim}, nil
}

// NewTin returns a Tin. The triangle list may be empty; at least three
// control points are required.
func NewTin(b Base, triangles []Patch, params TinParameters) (*Surface, error) {
	if len(params.ControlPoints) < 3 {
		return nil, invalid(KindTin, b, "needs at least 3 control points, got %d", len(params.ControlPoints))
	}
	dim, err := positionsDimension(params.ControlPoints)
	if err != nil {
		return nil, annotate(err, KindTin, b)
	}
	pd, err := checkPatches(KindTin, b, triangles)
	if err != nil {
		return nil, err
	}
	if dim, err = mergeDimension(dim, pd); err != nil {
		return nil, annotate(err, KindTin, b)
	}
	return &Surface{Base: b, Patches: triangles, Tin: &params, kind: KindTin, dim: dim}, nil
}

func checkPatches(kind Kind, b Base, patches []Patch) (int, error) {
	dim := 0
	for i, p := range patches {
		if p == nil {
			return 0, invalid(kind, b, "patch %d is nil", i)
		}
		switch kind {
		case KindPolyhedralSurface:
			if p.PatchKind() != PatchPolygon {
				return 0, invalid(kind, b, "patch %d is a %v, only PolygonPatch is allowed", i, p.PatchKind())
			}
		case KindTriangulatedSurface, KindTin:
			if p.PatchKind() != PatchTriangle {
				return 0, invalid(kind, b, "patch %d is a %v, only Triangle is allowed", i, p.PatchKind())
			}
		}
		var err error
		if dim, err = mergeDimension(dim, p.Dimension()); err != nil {
			return 0, annotate(err, kind, b)
		}
	}
	return dim, nil
}

func (s *Surface) Kind() Kind     { return s.kind }
func (s *Surface) Dimension() int { return dimensionOf(s, map[Geometry]bool{}) }

// Exterior returns the exterior ring of a Polygon, or nil for other kinds.
func (s *Surface) Exterior() *Ring {
	if s.kind != KindPolygon {
		return nil
	}
	return s.Patches[0].(*PolygonPatch).Exterior
}

// Interiors returns the interior rings of a Polygon.
func (s *Surface) Interiors() []*Ring {
	if s.kind != KindPolygon {
		return nil
	}
	return s.Patches[0].(*PolygonPatch).Interiors
}

// OrientableSurface uses BaseSurface with its orientation reversed when
// Positive is false.
type OrientableSurface struct {
	Base
	BaseSurface Geometry
	Positive    bool
}

func NewOrientableSurface(b Base, base Geometry, positive bool) (*OrientableSurface, error) {
	if base == nil {
		return nil, invalid(KindOrientableSurface, b, "missing base surface")
	}
	if _, err := checkMembers(KindOrientableSurface, b, []Geometry{base}, FamilySurface.Accepts); err != nil {
		return nil, err
	}
	return &OrientableSurface{Base: b, BaseSurface: base, Positive: positive}, nil
}

func (s *OrientableSurface) Kind() Kind { return KindOrientableSurface }

func (s *OrientableSurface) Dimension() int { return dimensionOf(s, map[Geometry]bool{}) }

// Patches returns the patches of the base surface, each with reversed
// boundary orientation when the surface is negative. ok is false when the
// base is unresolved or is not patch based.
func (s *OrientableSurface) Patches() ([]Patch, bool) {
	var patches []Patch
	switch base := Unwrap(s.BaseSurface).(type) {
	case *Surface:
		patches = base.Patches
	case *OrientableSurface:
		inner, ok := base.Patches()
		if !ok {
			return nil, false
		}
		patches = inner
	default:
		return nil, false
	}
	if s.Positive {
		return patches, true
	}
	out := make([]Patch, len(patches))
	for i, p := range patches {
		out[i] = ReversePatch(p)
	}
	return out, true
}

// ReversePatch returns p with the orientation of its boundary reversed.
func ReversePatch(p Patch) Patch {
	switch v := p.(type) {
	case *PolygonPatch:
		ints := make([]*Ring, len(v.Interiors))
		for i, r := range v.Interiors {
			ints[i] = r.Reversed()
		}
		return &PolygonPatch{Exterior: v.Exterior.Reversed(), Interiors: ints}
	case *Triangle:
		return &Triangle{Exterior: v.Exterior.Reversed()}
	case *Rectangle:
		return &Rectangle{Exterior: v.Exterior.Reversed()}
	case *GriddedPatch:
		rows := make([][]Position, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = Reversed(row)
		}
		out := *v
		out.Rows = rows
		return &out
	default:
		return p
	}
}
