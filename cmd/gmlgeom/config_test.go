package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gmlgeom.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
[decode]
dialect = "3.1"
workers = 2
http_timeout = "5s"

[encode]
dialect = "2"
srs_name = "id"

[linearize]
max_error = 0.01

[[crs]]
authority = "epsg"
code = "25832"
name = "ETRS89 / UTM zone 32N"
`)
	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "3.1", cfg.Decode.Dialect)
	require.Equal(t, 2, cfg.Decode.Workers)
	require.Equal(t, 5*time.Second, cfg.Decode.HTTPTimeout.Duration)
	require.True(t, cfg.Decode.ValidateIDs, "unset keys keep their defaults")
	require.Equal(t, "2", cfg.Encode.Dialect)

	crit := cfg.Criterion()
	require.Equal(t, 0.01, crit.MaxError)
	require.Equal(t, gml.DefaultCriterion().MaxPoints, crit.MaxPoints)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	c, err := reg.Lookup("EPSG:25832")
	require.NoError(t, err)
	require.Equal(t, "ETRS89 / UTM zone 32N", c.Name)
	require.Equal(t, 2, c.Dimension)

	enc := cfg.encodeOptions(nil)
	require.NotNil(t, enc.Strategy)
	require.Equal(t, "EPSG:25832", enc.SRSName(c))

	load, err := cfg.loadOptions(nil)
	require.NoError(t, err)
	require.Equal(t, gml.GML31, load.Dialect)
	require.True(t, load.Parallel)
	require.Equal(t, 2, load.Workers)
	require.NotNil(t, load.Decode.Cache)
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	load, err := cfg.loadOptions(nil)
	require.NoError(t, err)
	require.Equal(t, gml.GML32, load.Dialect)
	require.True(t, load.SkipErrors)

	cfg.Decode.Workers = 1
	load, err = cfg.loadOptions(nil)
	require.NoError(t, err)
	require.False(t, load.Parallel)
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[decode]\ncolour = 1\n", "unknown keys decode.colour"},
		{"bad dialect", "[decode]\ndialect = \"4\"\n", "decode.dialect"},
		{"bad srs name", "[encode]\nsrs_name = \"ogc\"\n", "encode.srs_name"},
		{"bad duration", "[decode]\nhttp_timeout = \"soon\"\n", "invalid duration"},
		{"negative error", "[linearize]\nmax_error = -1.0\n", "linearize.max_error"},
		{"syntax", "[decode\n", "parsing configuration file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestConfigRegistryRejectsBadCRS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CRS = []CRSConfig{{Authority: "EPSG", Code: "1", Dimension: 4}}
	_, err := cfg.Registry()
	require.Error(t, err)

	_, err = cfg.decodeOptions(nil)
	require.Error(t, err)
}
