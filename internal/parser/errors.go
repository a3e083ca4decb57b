package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/beetlebugorg/gml/internal/dialect"
)

// ErrUnexpectedElement indicates an element that is not allowed at the
// current position for the dialect being decoded.
type ErrUnexpectedElement struct {
	Name         xml.Name
	Dialect      dialect.Dialect
	Expected     string
	Line, Column int
}

func (e *ErrUnexpectedElement) Error() string {
	msg := fmt.Sprintf("unexpected element {%s}%s for GML %v", e.Name.Space, e.Name.Local, e.Dialect)
	if e.Expected != "" {
		msg += ", expected " + e.Expected
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d, column %d)", e.Line, e.Column)
	}
	return msg
}

// ErrMalformed indicates a known element whose content cannot be decoded:
// non-numeric ordinates, ordinate counts that do not match the dimension,
// missing required children.
type ErrMalformed struct {
	Element      string
	Reason       string
	Line, Column int
}

func (e *ErrMalformed) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed gml:%s at line %d, column %d: %s", e.Element, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed gml:%s: %s", e.Element, e.Reason)
}
