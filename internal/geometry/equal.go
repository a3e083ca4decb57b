package geometry

import (
	"reflect"
)

// Equal reports structural equality: same kinds, CRS, positions, segment
// parameters and member order. Identifiers are ignored. References compare
// by href and are not followed.
func Equal(a, b Geometry) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, aRef := a.(*Reference)
	rb, bRef := b.(*Reference)
	if aRef || bRef {
		return aRef && bRef && ra.Href == rb.Href
	}
	if a.Kind() != b.Kind() || !a.CRS().Equal(b.CRS()) {
		return false
	}

	switch x := a.(type) {
	case *Point:
		return x.Pos.Equal(b.(*Point).Pos)
	case *Envelope:
		y := b.(*Envelope)
		return x.Min.Equal(y.Min) && x.Max.Equal(y.Max)
	case *Curve:
		y := b.(*Curve)
		if len(x.Segments) != len(y.Segments) {
			return false
		}
		for i := range x.Segments {
			if !reflect.DeepEqual(x.Segments[i], y.Segments[i]) {
				return false
			}
		}
		return true
	case *OrientableCurve:
		y := b.(*OrientableCurve)
		return x.Positive == y.Positive && Equal(x.BaseCurve, y.BaseCurve)
	case *Ring:
		return equalAll(x.Members, b.(*Ring).Members)
	case *Surface:
		y := b.(*Surface)
		if len(x.Patches) != len(y.Patches) || !reflect.DeepEqual(x.Tin, y.Tin) {
			return false
		}
		for i := range x.Patches {
			if !EqualPatch(x.Patches[i], y.Patches[i]) {
				return false
			}
		}
		return true
	case *OrientableSurface:
		y := b.(*OrientableSurface)
		return x.Positive == y.Positive && Equal(x.BaseSurface, y.BaseSurface)
	case *Solid:
		y := b.(*Solid)
		return Equal(x.Exterior, y.Exterior) && equalAll(x.Interiors, y.Interiors)
	case *Composite:
		return equalAll(x.Members, b.(*Composite).Members)
	case *Multi:
		return equalAll(x.Members, b.(*Multi).Members)
	}
	return false
}

// EqualPatch compares two patches structurally.
func EqualPatch(a, b Patch) bool {
	if a.PatchKind() != b.PatchKind() {
		return false
	}
	switch x := a.(type) {
	case *PolygonPatch:
		y := b.(*PolygonPatch)
		if len(x.Interiors) != len(y.Interiors) || !Equal(x.Exterior, y.Exterior) {
			return false
		}
		for i := range x.Interiors {
			if !Equal(x.Interiors[i], y.Interiors[i]) {
				return false
			}
		}
		return true
	case *Triangle:
		return Equal(x.Exterior, b.(*Triangle).Exterior)
	case *Rectangle:
		return Equal(x.Exterior, b.(*Rectangle).Exterior)
	case *GriddedPatch:
		return reflect.DeepEqual(x.Rows, b.(*GriddedPatch).Rows)
	}
	return false
}

func equalAll(a, b []Geometry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
