package gml

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructAndEncode(t *testing.T) {
	wgs84, err := NewStaticRegistry().Lookup("EPSG:4326")
	require.NoError(t, err)

	// Decoded children inherit the CRS of their parent.
	ring, err := NewLinearRing(Base{SRS: wgs84}, []Position{XY(0, 0), XY(4, 0), XY(4, 4), XY(0, 0)})
	require.NoError(t, err)
	poly, err := NewPolygon(Base{GID: "parcel", SRS: wgs84}, ring, nil)
	require.NoError(t, err)

	arc, err := NewArc(XY(0, 0), XY(1, 1), XY(2, 0))
	require.NoError(t, err)
	curve, err := NewCurve(Base{GID: "edge"}, []Segment{arc})
	require.NoError(t, err)

	multi, err := NewMulti(Base{GID: "all"}, KindMultiGeometry, []Geometry{poly, curve})
	require.NoError(t, err)

	enc, err := NewEncoder(GML32, DefaultEncodeOptions())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, enc.Encode(NewSink(&buf, GML32), multi))

	doc := decodeDoc(t, GML32, buf.String())
	require.Len(t, doc.Geometries, 1)
	require.True(t, Equal(multi, doc.Geometries[0]), "re-decoded %s", buf.String())

	parcel, ok := doc.Lookup("parcel")
	require.True(t, ok)
	require.Equal(t, "EPSG:4326", parcel.CRS().ID())
}

func TestConstructorsValidate(t *testing.T) {
	_, err := NewLinearRing(Base{}, []Position{XY(0, 0), XY(1, 0), XY(1, 1)})
	require.Error(t, err, "open ring")

	_, err = NewEnvelope(Base{}, XY(5, 5), XY(0, 0))
	require.Error(t, err, "min exceeds max")

	_, err = NewPoint(Base{}, XY(1, 2))
	require.NoError(t, err)
}

func TestUnwrap(t *testing.T) {
	doc := decodeDoc(t, GML32, featureDoc(GML32, `
  <gml:MultiPoint>
    <gml:pointMember xlink:href="#p1"/>
    <gml:pointMember xlink:href="other.gml#p2"/>
  </gml:MultiPoint>
  <gml:Point gml:id="p1"><gml:pos>1 2</gml:pos></gml:Point>`))

	m, ok := doc.Geometries[0].(*Multi)
	require.True(t, ok)
	require.Len(t, m.Members, 2)

	p, ok := Unwrap(m.Members[0]).(*Point)
	require.True(t, ok)
	require.Equal(t, XY(1, 2), p.Pos)
	require.Nil(t, Unwrap(m.Members[1]))
}
