package gml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexQuery(t *testing.T) {
	doc := decodeDoc(t, GML31, featureDoc(GML31, `
  <gml:Point gml:id="p1"><gml:pos>1 1</gml:pos></gml:Point>
  <gml:LineString gml:id="l1"><gml:posList>5 0 5 10</gml:posList></gml:LineString>
  <gml:Polygon gml:id="s1"><gml:exterior><gml:LinearRing><gml:posList>20 20 30 20 30 30 20 30 20 20</gml:posList></gml:LinearRing></gml:exterior></gml:Polygon>
  <gml:Point gml:id="p2"><gml:pos>25 25</gml:pos></gml:Point>`))
	doc.Location = "sample.gml"

	idx := BuildIndex([]*Document{doc})
	require.Equal(t, 4, idx.Count())

	ids := func(entries []*IndexEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Geometry.ID())
		}
		return out
	}

	require.Equal(t, []string{"p1", "l1"}, ids(idx.Query(XY(0, 0), XY(6, 6), QueryOptions{})))
	require.Equal(t, []string{"s1", "p2"}, ids(idx.Query(XY(24, 24), XY(26, 26), QueryOptions{})))
	require.Equal(t, []string{"p2"}, ids(idx.Query(XY(26, 26), XY(24, 24), QueryOptions{Kinds: []Kind{KindPoint}})))
	require.Empty(t, idx.Query(XY(100, 100), XY(200, 200), QueryOptions{}))

	// Degenerate geometries are found by a window touching them.
	require.Equal(t, []string{"l1"}, ids(idx.Query(XY(5, 5), XY(5, 5), QueryOptions{})))

	env, ok := idx.Bounds()
	require.True(t, ok)
	require.Equal(t, XY(1, 0), env.Min)
	require.Equal(t, XY(30, 30), env.Max)
	require.Equal(t, "sample.gml", idx.All()[0].Location)
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex()
	_, ok := idx.Bounds()
	require.False(t, ok)
	require.Empty(t, idx.Query(XY(0, 0), XY(1, 1), QueryOptions{}))
}
