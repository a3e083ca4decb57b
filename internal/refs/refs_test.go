package refs

import (
	"errors"
	"io"
	"testing"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietContext() *Context {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewContext(log)
}

func TestForwardReference(t *testing.T) {
	ctx := quietContext()

	ref, err := ctx.RequestReference("#p1", geometry.FamilyPoint)
	require.NoError(t, err)
	require.False(t, ref.Resolved())

	p, err := geometry.NewPoint(geometry.Base{GID: "p1"}, geometry.XY(1, 2))
	require.NoError(t, err)
	require.NoError(t, ctx.Register("p1", p))

	require.NoError(t, ctx.ResolveLocalRefs())
	require.True(t, ref.Resolved())
	require.Same(t, p, ref.Target())

	// repeated resolution is a no-op
	require.NoError(t, ctx.ResolveLocalRefs())
}

func TestUnresolvedReportedOnce(t *testing.T) {
	ctx := quietContext()
	for i := 0; i < 3; i++ {
		_, err := ctx.RequestReference("#missing", geometry.FamilyAny)
		require.NoError(t, err)
	}
	_, err := ctx.RequestReference("#other", geometry.FamilyAny)
	require.NoError(t, err)

	err = ctx.ResolveLocalRefs()
	var unresolved *ErrUnresolvedReferences
	require.True(t, errors.As(err, &unresolved))
	require.Equal(t, []string{"missing", "other"}, unresolved.IDs)

	// still failing the same way on a second call
	err = ctx.ResolveLocalRefs()
	require.True(t, errors.As(err, &unresolved))
	require.Equal(t, []string{"missing", "other"}, unresolved.IDs)
}

func TestDuplicateID(t *testing.T) {
	ctx := quietContext()
	a, _ := geometry.NewPoint(geometry.Base{GID: "x"}, geometry.XY(0, 0))
	b, _ := geometry.NewPoint(geometry.Base{GID: "x"}, geometry.XY(1, 1))
	require.NoError(t, ctx.Register("x", a))
	require.NoError(t, ctx.Register("x", a), "same geometry twice is harmless")

	err := ctx.Register("x", b)
	var dup *ErrDuplicateID
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "x", dup.ID)
}

func TestFamilyMismatch(t *testing.T) {
	ctx := quietContext()
	_, err := ctx.RequestReference("#c", geometry.FamilySurface)
	require.NoError(t, err)
	ls, _ := geometry.NewLineString(geometry.Base{GID: "c"}, []geometry.Position{geometry.XY(0, 0), geometry.XY(1, 1)})
	require.NoError(t, ctx.Register("c", ls))

	err = ctx.ResolveLocalRefs()
	var invalid *geometry.ErrInvalidGeometry
	require.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestCycleIsTerminal(t *testing.T) {
	ctx := quietContext()
	ref, err := ctx.RequestReference("#m", geometry.FamilyAny)
	require.NoError(t, err)
	m, err := geometry.NewMulti(geometry.Base{GID: "m"}, geometry.KindMultiGeometry, []geometry.Geometry{ref})
	require.NoError(t, err)
	require.NoError(t, ctx.Register("m", m))

	require.NoError(t, ctx.ResolveLocalRefs())
	require.Same(t, m, ref.Target())
	require.Equal(t, geometry.KindMultiGeometry, ref.Kind())
}

func TestDeferredChecks(t *testing.T) {
	ctx := quietContext()
	ref, err := ctx.RequestReference("#p", geometry.FamilyPoint)
	require.NoError(t, err)

	ran := 0
	ctx.Defer(func() error { ran++; return nil }, ref)

	p, _ := geometry.NewPoint(geometry.Base{GID: "p"}, geometry.XY(0, 0))
	require.NoError(t, ctx.Register("p", p))
	require.NoError(t, ctx.ResolveLocalRefs())
	require.NoError(t, ctx.ResolveLocalRefs())
	require.Equal(t, 1, ran, "a passing check runs once")

	ctx.Defer(func() error { return errors.New("boom") })
	require.EqualError(t, ctx.ResolveLocalRefs(), "boom")
}

func TestRemoteReferences(t *testing.T) {
	ctx := quietContext()
	ref, err := ctx.RequestReference("roads.gml#r7", geometry.FamilyCurve)
	require.NoError(t, err)

	require.NoError(t, ctx.ResolveLocalRefs(), "remote references do not block local resolution")
	require.Len(t, ctx.RemoteRefs(), 1)

	err = ctx.ResolveRemoteRefs()
	var unresolved *ErrUnresolvedReferences
	require.True(t, errors.As(err, &unresolved))
	require.Equal(t, []string{"roads.gml#r7"}, unresolved.IDs)

	ls, _ := geometry.NewLineString(geometry.Base{GID: "r7"}, []geometry.Position{geometry.XY(0, 0), geometry.XY(1, 1)})
	ctx.RegisterRemote("roads.gml", "r7", ls)
	require.NoError(t, ctx.ResolveRemoteRefs())
	require.True(t, ref.Resolved())
	require.Empty(t, ctx.RemoteRefs())
}

func TestRollback(t *testing.T) {
	ctx := quietContext()
	a, _ := geometry.NewPoint(geometry.Base{GID: "a"}, geometry.XY(0, 0))
	require.NoError(t, ctx.Register("a", a))
	cp := ctx.Checkpoint()

	b, _ := geometry.NewPoint(geometry.Base{GID: "b"}, geometry.XY(1, 1))
	require.NoError(t, ctx.Register("b", b))
	require.NoError(t, ctx.Register("a", a))
	_, err := ctx.RequestReference("#missing", geometry.FamilyPoint)
	require.NoError(t, err)
	_, err = ctx.RequestReference("other.gml#x", geometry.FamilyPoint)
	require.NoError(t, err)
	ctx.Defer(func() error { return errors.New("never runs") })

	ctx.Rollback(cp)
	_, ok := ctx.Lookup("b")
	require.False(t, ok)
	_, ok = ctx.Lookup("a")
	require.True(t, ok)
	require.Equal(t, 1, ctx.IDs())
	require.Empty(t, ctx.RemoteRefs())
	require.NoError(t, ctx.ResolveLocalRefs())

	b2, _ := geometry.NewPoint(geometry.Base{GID: "b"}, geometry.XY(2, 2))
	require.NoError(t, ctx.Register("b", b2), "the id is free again")
}
