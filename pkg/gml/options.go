package gml

import (
	"github.com/beetlebugorg/gml/internal/crs"
	"github.com/sirupsen/logrus"
)

// DecodeOptions configures decoding behavior.
type DecodeOptions struct {
	// Registry resolves srsName values. Nil uses the built-in registry.
	Registry Registry

	// Logger receives debug output. Nil uses the logrus standard logger.
	Logger logrus.FieldLogger

	// ValidateIDs rejects gml:id and gid values that are not XML NCNames.
	ValidateIDs bool

	// MaxDepth bounds geometry nesting. Zero uses 256.
	MaxDepth int

	// Cache holds documents fetched while resolving remote references.
	// Nil fetches every remote document again.
	Cache *DocumentCache
}

// DefaultDecodeOptions returns default options.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		ValidateIDs: true,
		MaxDepth:    256,
	}
}

// EncodeOptions configures encoding behavior.
type EncodeOptions struct {
	// Strategy linearizes what the dialect cannot express. Nil rejects such
	// geometries with *ErrUnsupported.
	Strategy Strategy

	// Logger receives debug output. Nil uses the logrus standard logger.
	Logger logrus.FieldLogger

	// GenerateIDs gives GML 3.2 geometries without an identifier a generated
	// gml:id, which the 3.2 schema requires.
	GenerateIDs bool

	// IDGenerator returns fresh identifiers. Nil uses random UUIDs.
	IDGenerator func() string

	// SRSName formats srsName attributes. Nil writes "EPSG:4326" style names
	// for GML 2 and URNs for GML 3.
	SRSName func(c *crs.CRS) string
}

// DefaultEncodeOptions returns default options.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		GenerateIDs: true,
	}
}
