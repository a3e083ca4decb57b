package writer

import (
	"fmt"

	"github.com/beetlebugorg/gml/internal/dialect"
)

// ErrUnsupported indicates a geometry the target dialect cannot express,
// either at all or without a linearization strategy.
type ErrUnsupported struct {
	Kind    string
	Dialect dialect.Dialect
	Reason  string
}

func (e *ErrUnsupported) Error() string {
	msg := fmt.Sprintf("cannot encode %s as GML %v", e.Kind, e.Dialect)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
