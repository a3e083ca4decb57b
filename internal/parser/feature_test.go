package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/beetlebugorg/gml/internal/dialect"
	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/refs"
	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/stretchr/testify/require"
)

// decodeAll decodes every sibling geometry in body with one decoder.
func decodeAll(t *testing.T, dec *Decoder, body string) []geometry.Geometry {
	t.Helper()
	cur := xmlstream.NewCursor(strings.NewReader(wrap(dec.Dialect(), body)))
	require.NoError(t, cur.NextStart())
	var out []geometry.Geometry
	for {
		_, err := cur.NextTag()
		require.NoError(t, err)
		if cur.Name().Local == "after" {
			return out
		}
		g, err := dec.Decode(cur, nil)
		require.NoError(t, err)
		out = append(out, g)
	}
}

func TestForwardReference(t *testing.T) {
	body := `<gml:MultiCurve>
  <gml:curveMember xlink:href="#l2"/>
  <gml:curveMember><gml:LineString gml:id="l2"><gml:posList>0 0 1 1</gml:posList></gml:LineString></gml:curveMember>
  <gml:curveMember xlink:href="#l2"></gml:curveMember>
</gml:MultiCurve>`
	for _, d := range gml3 {
		t.Run(d.String(), func(t *testing.T) {
			dec := newDecoder(t, d)
			g, err := decodeBody(t, dec, body)
			require.NoError(t, err)
			m := g.(*geometry.Multi)
			first := m.Members[0].(*geometry.Reference)
			require.False(t, first.Resolved())
			require.False(t, geometry.Complete(first))

			require.NoError(t, dec.ResolveLocalRefs())
			require.True(t, first.Resolved())
			require.Same(t, m.Members[1], first.Target())
			require.Same(t, m.Members[1], m.Members[2].(*geometry.Reference).Target())
			require.True(t, geometry.Complete(first))
			require.Equal(t, 2, m.Dimension())

			require.NoError(t, dec.ResolveLocalRefs())
		})
	}
}

func TestReferenceAcrossDecodeCalls(t *testing.T) {
	dec := newDecoder(t, dialect.GML31)
	gs := decodeAll(t, dec, `<gml:OrientableCurve orientation="-"><gml:baseCurve xlink:href="#c"/></gml:OrientableCurve>`+
		`<gml:LineString gml:id="c"><gml:posList>0 0 3 4</gml:posList></gml:LineString>`)
	require.Len(t, gs, 2)
	require.NoError(t, dec.ResolveLocalRefs())
	oc := gs[0].(*geometry.OrientableCurve)
	require.Equal(t, geometry.XY(3, 4), oc.StartPosition())
	require.Equal(t, 1, dec.Context().IDs())
}

func TestUnresolvedReferences(t *testing.T) {
	dec := newDecoder(t, dialect.GML32)
	_, err := decodeBody(t, dec, `<gml:MultiPoint>
  <gml:pointMember xlink:href="#missing"/>
  <gml:pointMember xlink:href="#other"/>
  <gml:pointMember xlink:href="#missing"/>
</gml:MultiPoint>`)
	require.NoError(t, err)

	err = dec.ResolveLocalRefs()
	var unresolved *refs.ErrUnresolvedReferences
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	require.Equal(t, []string{"missing", "other"}, unresolved.IDs)

	err = dec.ResolveLocalRefs()
	require.True(t, errors.As(err, &unresolved))
	require.Equal(t, []string{"missing", "other"}, unresolved.IDs)
}

func TestDuplicateID(t *testing.T) {
	_, err := decodeBody(t, newDecoder(t, dialect.GML31), `<gml:MultiPoint>
  <gml:pointMember><gml:Point gml:id="p"><gml:pos>0 0</gml:pos></gml:Point></gml:pointMember>
  <gml:pointMember><gml:Point gml:id="p"><gml:pos>1 1</gml:pos></gml:Point></gml:pointMember>
</gml:MultiPoint>`)
	var dup *refs.ErrDuplicateID
	require.True(t, errors.As(err, &dup), "got %v", err)
	require.Equal(t, "p", dup.ID)
	require.Contains(t, err.Error(), "gml:Point at line 3")
}

func TestReferenceErrors(t *testing.T) {
	t.Run("href with content", func(t *testing.T) {
		m := malformed(t, dialect.GML31, `<gml:MultiPoint><gml:pointMember xlink:href="#p"><gml:Point><gml:pos>0 0</gml:pos></gml:Point></gml:pointMember></gml:MultiPoint>`)
		require.Equal(t, "pointMember", m.Element)
		require.Contains(t, m.Reason, "must be empty")
	})

	t.Run("href without fragment", func(t *testing.T) {
		m := malformed(t, dialect.GML31, `<gml:MultiPoint><gml:pointMember xlink:href="points.gml"/></gml:MultiPoint>`)
		require.Contains(t, m.Reason, "no fragment")
	})

	t.Run("empty property", func(t *testing.T) {
		m := malformed(t, dialect.GML31, `<gml:MultiPoint><gml:pointMember/></gml:MultiPoint>`)
		require.Contains(t, m.Reason, "neither xlink:href nor a geometry")
	})

	t.Run("wrong family", func(t *testing.T) {
		dec := newDecoder(t, dialect.GML31)
		decodeAll(t, dec, `<gml:Point gml:id="p"><gml:pos>0 0</gml:pos></gml:Point>`+
			`<gml:MultiCurve><gml:curveMember xlink:href="#p"/></gml:MultiCurve>`)
		require.Error(t, dec.ResolveLocalRefs())
	})
}

func TestDeferredValidation(t *testing.T) {
	ring := `<gml:Ring><gml:curveMember xlink:href="#a"/><gml:curveMember xlink:href="#b"/></gml:Ring>`

	t.Run("closed", func(t *testing.T) {
		dec := newDecoder(t, dialect.GML31)
		gs := decodeAll(t, dec, ring+
			`<gml:LineString gml:id="a"><gml:posList>0 0 1 0 1 1</gml:posList></gml:LineString>`+
			`<gml:LineString gml:id="b"><gml:posList>1 1 0 0</gml:posList></gml:LineString>`)
		require.NoError(t, dec.ResolveLocalRefs())
		pts, ok := gs[0].(*geometry.Ring).Positions()
		require.True(t, ok)
		require.Len(t, pts, 4)
	})

	t.Run("open", func(t *testing.T) {
		dec := newDecoder(t, dialect.GML31)
		decodeAll(t, dec, ring+
			`<gml:LineString gml:id="a"><gml:posList>0 0 1 0 1 1</gml:posList></gml:LineString>`+
			`<gml:LineString gml:id="b"><gml:posList>1 1 0 1</gml:posList></gml:LineString>`)
		err := dec.ResolveLocalRefs()
		var invalid *geometry.ErrInvalidGeometry
		require.True(t, errors.As(err, &invalid), "got %v", err)
		require.Equal(t, geometry.KindRing, invalid.Kind)
	})

	t.Run("composite", func(t *testing.T) {
		dec := newDecoder(t, dialect.GML32)
		decodeAll(t, dec, `<gml:CompositeCurve><gml:curveMember xlink:href="#a"/><gml:curveMember xlink:href="#b"/></gml:CompositeCurve>`+
			`<gml:LineString gml:id="a"><gml:posList>0 0 1 0</gml:posList></gml:LineString>`+
			`<gml:LineString gml:id="b"><gml:posList>5 5 6 6</gml:posList></gml:LineString>`)
		err := dec.ResolveLocalRefs()
		var invalid *geometry.ErrInvalidGeometry
		require.True(t, errors.As(err, &invalid), "got %v", err)
		require.Equal(t, geometry.KindCompositeCurve, invalid.Kind)
	})

	t.Run("multi dimension from references", func(t *testing.T) {
		dec := newDecoder(t, dialect.GML32)
		gs := decodeAll(t, dec, `<gml:MultiPoint><gml:pointMember xlink:href="#a"/></gml:MultiPoint>`+
			`<gml:Point gml:id="a" srsDimension="3"><gml:pos>1 2 3</gml:pos></gml:Point>`)
		require.Equal(t, 0, gs[0].Dimension(), "nothing is bound yet")
		require.NoError(t, dec.ResolveLocalRefs())
		require.Equal(t, 3, gs[0].Dimension())
	})

	t.Run("multi mixed dimensions", func(t *testing.T) {
		dec := newDecoder(t, dialect.GML32)
		decodeAll(t, dec, `<gml:MultiPoint gml:id="m">`+
			`<gml:pointMember><gml:Point><gml:pos>1 2</gml:pos></gml:Point></gml:pointMember>`+
			`<gml:pointMember xlink:href="#a"/></gml:MultiPoint>`+
			`<gml:Point gml:id="a" srsDimension="3"><gml:pos>1 2 3</gml:pos></gml:Point>`)
		err := dec.ResolveLocalRefs()
		var invalid *geometry.ErrInvalidGeometry
		require.True(t, errors.As(err, &invalid), "got %v", err)
		require.Equal(t, geometry.KindMultiPoint, invalid.Kind)
		require.Equal(t, "m", invalid.ID)
	})
}

func TestRemoteReferences(t *testing.T) {
	dec := newDecoder(t, dialect.GML32)
	g, err := decodeBody(t, dec, `<gml:MultiCurve><gml:curveMember xlink:href="roads.gml#r1"/></gml:MultiCurve>`)
	require.NoError(t, err)

	require.NoError(t, dec.ResolveLocalRefs())
	remote := dec.Context().RemoteRefs()
	require.Len(t, remote, 1)
	require.Equal(t, "roads.gml", remote[0].Location)
	require.Equal(t, "r1", remote[0].Fragment)

	road, err := geometry.NewLineString(geometry.Base{GID: "r1"}, []geometry.Position{geometry.XY(0, 0), geometry.XY(1, 0)})
	require.NoError(t, err)
	dec.Context().RegisterRemote("roads.gml", "r1", road)
	require.NoError(t, dec.Context().ResolveRemoteRefs())
	require.Same(t, road, g.(*geometry.Multi).Members[0].(*geometry.Reference).Target())
	require.Empty(t, dec.Context().RemoteRefs())
}

func TestFailedDecodeForgetsChildren(t *testing.T) {
	dec := newDecoder(t, dialect.GML32)
	_, err := decodeBody(t, dec, `<gml:MultiPoint>`+
		`<gml:pointMember><gml:Point gml:id="p1"><gml:pos>1 2</gml:pos></gml:Point></gml:pointMember>`+
		`<gml:pointMember xlink:href="#gone"/>`+
		`<gml:pointMember><gml:Point><gml:pos>1</gml:pos></gml:Point></gml:pointMember>`+
		`</gml:MultiPoint>`)
	require.Error(t, err)

	_, ok := dec.Context().Lookup("p1")
	require.False(t, ok)
	require.NoError(t, dec.ResolveLocalRefs(), "the reference to #gone went with its element")

	g, err := decodeBody(t, dec, `<gml:Point gml:id="p1"><gml:pos>3 4</gml:pos></gml:Point>`)
	require.NoError(t, err)
	got, ok := dec.Context().Lookup("p1")
	require.True(t, ok)
	require.Same(t, g, got)
}
