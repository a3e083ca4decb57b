package parser

import (
	"testing"

	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/stretchr/testify/require"
)

func TestGeometryElements(t *testing.T) {
	gml2 := GeometryElements(dialect.GML2)
	require.Equal(t, []string{
		"Point", "LineString", "LinearRing", "Polygon", "Box",
		"MultiPoint", "MultiLineString", "MultiPolygon", "MultiGeometry",
	}, gml2)

	gml31 := GeometryElements(dialect.GML31)
	require.Contains(t, gml31, "MultiPolygon")
	require.Contains(t, gml31, "Tin")
	require.NotContains(t, gml31, "Box")
	require.NotContains(t, gml31, "Shell")

	gml32 := GeometryElements(dialect.GML32)
	require.NotContains(t, gml32, "MultiLineString")
	require.NotContains(t, gml32, "MultiPolygon")
	require.Contains(t, gml32, "Envelope")
	require.Len(t, gml32, len(gml31)-2)
}

func TestLookupTerm(t *testing.T) {
	tests := []struct {
		dialect dialect.Dialect
		local   string
		role    string
		ok      bool
	}{
		{dialect.GML2, "coordinates", rolePosition, true},
		{dialect.GML2, "posList", rolePosition, false},
		{dialect.GML31, "coord", rolePosition, true},
		{dialect.GML32, "coord", rolePosition, false},
		{dialect.GML32, "Shell", roleShell, true},
		{dialect.GML31, "outerBoundaryIs", roleExterior, true},
		{dialect.GML32, "identifier", roleStandard, true},
		{dialect.GML31, "identifier", roleStandard, false},
		{dialect.GML32, "Unknown", "", false},
	}
	for _, tt := range tests {
		role, ok := lookupTerm(tt.dialect, tt.local)
		if role != tt.role || ok != tt.ok {
			t.Errorf("lookupTerm(%v, %q) = %q, %v; want %q, %v", tt.dialect, tt.local, role, ok, tt.role, tt.ok)
		}
	}
}
