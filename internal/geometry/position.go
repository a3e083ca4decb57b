package geometry

import (
	"fmt"
	"math"
)

// Position is a 2D or 3D coordinate tuple. It has no identity and is copied
// by value.
type Position struct {
	X, Y, Z float64
	Dim     int
}

// XY returns a 2D position.
func XY(x, y float64) Position {
	return Position{X: x, Y: y, Dim: 2}
}

// XYZ returns a 3D position.
func XYZ(x, y, z float64) Position {
	return Position{X: x, Y: y, Z: z, Dim: 3}
}

// NewPosition builds a position from 2 or 3 ordinates.
func NewPosition(ords []float64) (Position, error) {
	switch len(ords) {
	case 2:
		return XY(ords[0], ords[1]), nil
	case 3:
		return XYZ(ords[0], ords[1], ords[2]), nil
	default:
		return Position{}, &ErrInvalidGeometry{
			Reason: fmt.Sprintf("position must have 2 or 3 ordinates, got %d", len(ords)),
		}
	}
}

// Ordinates returns the ordinates as a slice of length Dim.
func (p Position) Ordinates() []float64 {
	if p.Dim == 3 {
		return []float64{p.X, p.Y, p.Z}
	}
	return []float64{p.X, p.Y}
}

// Equal reports exact equality of dimension and ordinates.
func (p Position) Equal(o Position) bool {
	if p.Dim != o.Dim || p.X != o.X || p.Y != o.Y {
		return false
	}
	return p.Dim != 3 || p.Z == o.Z
}

// Coincident reports whether two positions are equal up to floating point
// noise. Exactly equal positions are always coincident.
func (p Position) Coincident(o Position) bool {
	if p.Equal(o) {
		return true
	}
	if p.Dim != o.Dim {
		return false
	}
	scale := math.Max(1, math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))))
	tol := 1e-9 * scale
	return math.Abs(p.X-o.X) <= tol && math.Abs(p.Y-o.Y) <= tol && math.Abs(p.Z-o.Z) <= tol
}

func (p Position) String() string {
	if p.Dim == 3 {
		return fmt.Sprintf("(%g %g %g)", p.X, p.Y, p.Z)
	}
	return fmt.Sprintf("(%g %g)", p.X, p.Y)
}

// Reversed returns a reversed copy of pts.
func Reversed(pts []Position) []Position {
	out := make([]Position, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// positionsDimension returns the common dimension of pts or an error naming
// the first offending index.
func positionsDimension(pts []Position) (int, error) {
	if len(pts) == 0 {
		return 0, nil
	}
	dim := pts[0].Dim
	for i, p := range pts {
		if p.Dim != 2 && p.Dim != 3 {
			return 0, &ErrInvalidGeometry{Reason: fmt.Sprintf("position %d has dimension %d", i, p.Dim)}
		}
		if p.Dim != dim {
			return 0, &ErrInvalidGeometry{
				Reason: fmt.Sprintf("position %d has dimension %d, expected %d", i, p.Dim, dim),
			}
		}
	}
	return dim, nil
}

// mergeDimension folds d into the running dimension. Zero means unknown
// (unresolved reference) and never conflicts.
func mergeDimension(current, d int) (int, error) {
	switch {
	case d == 0:
		return current, nil
	case current == 0:
		return d, nil
	case current != d:
		return current, &ErrInvalidGeometry{
			Reason: fmt.Sprintf("mixed coordinate dimensions %d and %d", current, d),
		}
	}
	return current, nil
}
