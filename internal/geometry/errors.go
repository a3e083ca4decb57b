package geometry

import (
	"fmt"
)

// ErrInvalidGeometry indicates a geometry that violates a structural rule
// (unclosed ring, empty aggregate, gap between segments, mixed dimensions).
type ErrInvalidGeometry struct {
	Kind   Kind
	ID     string
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	switch {
	case e.Kind != 0 && e.ID != "":
		return fmt.Sprintf("invalid geometry (%v %q): %s", e.Kind, e.ID, e.Reason)
	case e.Kind != 0:
		return fmt.Sprintf("invalid geometry (%v): %s", e.Kind, e.Reason)
	default:
		return fmt.Sprintf("invalid geometry: %s", e.Reason)
	}
}

// invalid builds an ErrInvalidGeometry for the given kind and base.
func invalid(kind Kind, b Base, format string, args ...interface{}) error {
	return &ErrInvalidGeometry{Kind: kind, ID: b.GID, Reason: fmt.Sprintf(format, args...)}
}

// annotate fills in kind and id on an ErrInvalidGeometry produced by a
// lower level helper.
func annotate(err error, kind Kind, b Base) error {
	if e, ok := err.(*ErrInvalidGeometry); ok && e.Kind == 0 {
		return &ErrInvalidGeometry{Kind: kind, ID: b.GID, Reason: e.Reason}
	}
	return err
}
