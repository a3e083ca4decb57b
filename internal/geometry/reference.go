package geometry

import (
	"fmt"
	"strings"

	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/cockroachdb/errors"
)

// Reference stands in for a geometry given by xlink:href. It is created
// unresolved and bound to its target exactly once by the refs package.
// Until then it reports KindReference and dimension 0.
type Reference struct {
	// Href is the attribute value as written in the document.
	Href string
	// Location is the document part of Href, empty for local references.
	Location string
	// Fragment is the id part of Href.
	Fragment string
	// Expected is the family the referencing property requires.
	Expected Family

	target Geometry
}

// NewReference splits href into location and fragment.
func NewReference(href string, expected Family) (*Reference, error) {
	href = strings.TrimSpace(href)
	loc, frag := href, ""
	if i := strings.LastIndexByte(href, '#'); i >= 0 {
		loc, frag = href[:i], href[i+1:]
	}
	if frag == "" {
		return nil, &ErrInvalidGeometry{Kind: KindReference, Reason: fmt.Sprintf("href %q has no fragment identifier", href)}
	}
	return &Reference{Href: href, Location: loc, Fragment: frag, Expected: expected}, nil
}

// IsLocal reports whether the reference points into the same document.
func (r *Reference) IsLocal() bool { return r.Location == "" }

// Resolved reports whether the reference has been bound.
func (r *Reference) Resolved() bool { return r.target != nil }

// Target returns the bound geometry or nil.
func (r *Reference) Target() Geometry { return r.target }

// Bind sets the target. The target must belong to the expected family, and
// a reference can only be bound once.
func (r *Reference) Bind(g Geometry) error {
	if g == nil {
		return errors.Newf("reference %q: nil target", r.Href)
	}
	if r.target != nil {
		if r.target == g {
			return nil
		}
		return errors.Newf("reference %q is already bound", r.Href)
	}
	kind := g.Kind()
	if ref, ok := g.(*Reference); ok && !ref.Resolved() {
		kind = KindReference
	}
	if kind != KindReference && !r.Expected.Accepts(kind) {
		return &ErrInvalidGeometry{
			Kind:   kind,
			ID:     r.Fragment,
			Reason: fmt.Sprintf("referenced by %q where a %v is expected", r.Href, r.Expected),
		}
	}
	r.target = g
	return nil
}

func (r *Reference) Kind() Kind {
	if t := Unwrap(r); t != nil {
		return t.Kind()
	}
	return KindReference
}

// ID returns the fragment identifier of the referenced geometry.
func (r *Reference) ID() string { return r.Fragment }

func (r *Reference) CRS() *crs.CRS {
	if t := Unwrap(r); t != nil {
		return t.CRS()
	}
	return nil
}

func (r *Reference) Dimension() int { return dimensionOf(r, map[Geometry]bool{}) }

// StartPosition and EndPosition make a reference to a curve usable as a
// curve member. They return the zero position while unresolved.
func (r *Reference) StartPosition() Position {
	start, _, _ := endpoints(r)
	return start
}

func (r *Reference) EndPosition() Position {
	_, end, _ := endpoints(r)
	return end
}
