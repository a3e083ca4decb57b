package crs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"EPSG:4326", "EPSG:4326", true},
		{"epsg:31467", "EPSG:31467", true},
		{"urn:ogc:def:crs:EPSG::4326", "EPSG:4326", true},
		{"urn:ogc:def:crs:EPSG:6.6:4326", "EPSG:4326", true},
		{"urn:x-ogc:def:crs:EPSG:4258", "EPSG:4258", true},
		{"http://www.opengis.net/def/crs/EPSG/0/25832", "EPSG:25832", true},
		{"http://www.opengis.net/gml/srs/epsg.xml#4326", "EPSG:4326", true},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", "OGC:CRS84", true},
		{"CRS:84", "OGC:CRS84", true},
		{"", "", false},
		{"nonsense", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestStaticRegistryLookup(t *testing.T) {
	reg := NewStaticRegistry()

	c, err := reg.Lookup("urn:ogc:def:crs:EPSG::4326")
	require.NoError(t, err)
	require.Equal(t, "EPSG:4326", c.ID())
	require.Equal(t, 2, c.Dimension)

	_, err = reg.Lookup("EPSG:999999")
	var unknown *ErrUnknownCRS
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "EPSG:999999", unknown.ID)

	require.NoError(t, reg.Register(CRS{Authority: "epsg", Code: "999999", Dimension: 3}))
	c, err = reg.Lookup("EPSG:999999")
	require.NoError(t, err)
	require.Equal(t, 3, c.Dimension)

	require.Error(t, reg.Register(CRS{Authority: "EPSG", Code: "1", Dimension: 4}))
}

func TestResolve(t *testing.T) {
	reg := NewStaticRegistry()
	wgs84, err := reg.Lookup("EPSG:4326")
	require.NoError(t, err)

	t.Run("explicit wins", func(t *testing.T) {
		c, err := Resolve(reg, "EPSG:4258", wgs84)
		require.NoError(t, err)
		require.Equal(t, "EPSG:4258", c.ID())
	})

	t.Run("inherited", func(t *testing.T) {
		c, err := Resolve(reg, "", wgs84)
		require.NoError(t, err)
		require.True(t, c.Equal(wgs84))
	})

	t.Run("undefined is legal", func(t *testing.T) {
		c, err := Resolve(reg, "  ", nil)
		require.NoError(t, err)
		require.Nil(t, c)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Resolve(reg, "EPSG:0", wgs84)
		var unknown *ErrUnknownCRS
		require.True(t, errors.As(err, &unknown))
	})
}

func TestEmit(t *testing.T) {
	a := &CRS{Authority: "EPSG", Code: "4326"}
	b := &CRS{Authority: "EPSG", Code: "4326"}
	c := &CRS{Authority: "EPSG", Code: "4258"}

	require.Nil(t, Emit(a, b), "same system as ancestor is omitted")
	require.Equal(t, c, Emit(c, a))
	require.Equal(t, a, Emit(a, nil))
	require.Nil(t, Emit(nil, a))
}
