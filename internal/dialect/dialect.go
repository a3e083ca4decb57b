// Package dialect enumerates the supported GML versions and their namespaces.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect is one of the supported GML versions.
type Dialect int

const (
	// GML2 is GML 2.1.2, the legacy simple-features dialect.
	GML2 Dialect = iota + 1
	// GML31 is GML 3.1.1.
	GML31
	// GML32 is GML 3.2.1.
	GML32
)

// Namespace URIs.
const (
	NamespaceGML   = "http://www.opengis.net/gml"
	NamespaceGML32 = "http://www.opengis.net/gml/3.2"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

// Namespace returns the GML namespace URI of the dialect.
func (d Dialect) Namespace() string {
	if d == GML32 {
		return NamespaceGML32
	}
	return NamespaceGML
}

// HasCurves reports whether the dialect can express curve segments, surface
// patches, solids and composites.
func (d Dialect) HasCurves() bool {
	return d == GML31 || d == GML32
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	return d >= GML2 && d <= GML32
}

// String returns the version number of the dialect.
func (d Dialect) String() string {
	switch d {
	case GML2:
		return "2.1.2"
	case GML31:
		return "3.1.1"
	case GML32:
		return "3.2.1"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Parse accepts "2", "2.1", "2.1.2", "3.1", "3.1.1", "3.2", "3.2.1" with an
// optional "gml" prefix.
func Parse(s string) (Dialect, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "gml")
	v = strings.TrimPrefix(v, "_")
	switch v {
	case "2", "2.1", "2.1.2", "21", "212":
		return GML2, nil
	case "3.1", "3.1.1", "31", "311":
		return GML31, nil
	case "3.2", "3.2.1", "32", "321":
		return GML32, nil
	}
	return 0, fmt.Errorf("unknown GML dialect %q", s)
}
