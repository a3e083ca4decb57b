package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the gmlgeom configuration. Every field has a default, so the
// configuration file is optional and may set any subset of keys.
type Config struct {
	Decode    DecodeConfig    `toml:"decode"`
	Encode    EncodeConfig    `toml:"encode"`
	Linearize LinearizeConfig `toml:"linearize"`

	// CRS lists coordinate reference systems known in addition to the
	// built-in EPSG and OGC definitions.
	CRS []CRSConfig `toml:"crs"`
}

// DecodeConfig controls how input documents are read.
type DecodeConfig struct {
	// Dialect of the input documents: "2", "3.1" or "3.2".
	Dialect string `toml:"dialect"`

	// ValidateIDs rejects gml:id values that are not NCNames.
	ValidateIDs bool `toml:"validate_ids"`

	// MaxDepth bounds element nesting inside one geometry.
	MaxDepth int `toml:"max_depth"`

	// Workers is the number of documents decoded concurrently. 0 uses one
	// per CPU, 1 decodes serially.
	Workers int `toml:"workers"`

	// SkipErrors reports failed documents and carries on with the rest.
	SkipErrors bool `toml:"skip_errors"`

	// Resolve fetches the documents named by remote xlink:href values.
	Resolve bool `toml:"resolve"`

	// HTTPTimeout bounds each remote document request, for example "30s".
	HTTPTimeout duration `toml:"http_timeout"`

	// CacheMB bounds the memory used by fetched remote documents. 0
	// disables the cache.
	CacheMB int `toml:"cache_mb"`
}

// EncodeConfig controls GML output.
type EncodeConfig struct {
	// Dialect of the output: "2", "3.1" or "3.2".
	Dialect string `toml:"dialect"`

	// GenerateIDs assigns gml:id values to GML 3.2 output that has none.
	GenerateIDs bool `toml:"generate_ids"`

	// Linearize approximates curves and patches the output dialect cannot
	// express. Without it such geometries fail to convert.
	Linearize bool `toml:"linearize"`

	// SRSName selects the srsName syntax: "id" (EPSG:4326), "urn"
	// (urn:ogc:def:crs:EPSG::4326) or "" for the dialect default.
	SRSName string `toml:"srs_name"`
}

// LinearizeConfig bounds the approximation of curves and patches.
type LinearizeConfig struct {
	// MaxError is the largest allowed distance between the curve and its
	// approximation, in CRS units.
	MaxError float64 `toml:"max_error"`

	// MaxPoints caps the positions produced for one segment or patch.
	MaxPoints int `toml:"max_points"`
}

// CRSConfig defines one coordinate reference system.
type CRSConfig struct {
	Authority string `toml:"authority"`
	Code      string `toml:"code"`
	Name      string `toml:"name"`
	Dimension int    `toml:"dimension"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := gml.DefaultCriterion()
	return &Config{
		Decode: DecodeConfig{
			Dialect:     "3.2",
			ValidateIDs: true,
			MaxDepth:    256,
			SkipErrors:  true,
			CacheMB:     64,
			HTTPTimeout: duration{30 * time.Second},
		},
		Encode: EncodeConfig{
			Dialect:     "3.2",
			GenerateIDs: true,
			Linearize:   true,
		},
		Linearize: LinearizeConfig{
			MaxError:  c.MaxError,
			MaxPoints: c.MaxPoints,
		},
	}
}

// ReadConfig reads the TOML file at filename over the defaults. An empty
// filename returns the defaults.
func ReadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(filename, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf("configuration file %s does not exist", filename)
		}
		return nil, errors.Wrapf(err, "parsing configuration file %s", filename)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf("configuration file %s: unknown keys %s", filename, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "configuration file %s", filename)
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by type alone.
func (c *Config) Validate() error {
	if _, err := gml.ParseDialect(c.Decode.Dialect); err != nil {
		return errors.Wrap(err, "decode.dialect")
	}
	if _, err := gml.ParseDialect(c.Encode.Dialect); err != nil {
		return errors.Wrap(err, "encode.dialect")
	}
	switch c.Encode.SRSName {
	case "", "id", "urn":
	default:
		return errors.Newf("encode.srs_name must be \"id\" or \"urn\", got %q", c.Encode.SRSName)
	}
	if c.Linearize.MaxError < 0 {
		return errors.Newf("linearize.max_error must not be negative, got %g", c.Linearize.MaxError)
	}
	if c.Linearize.MaxPoints < 0 {
		return errors.Newf("linearize.max_points must not be negative, got %d", c.Linearize.MaxPoints)
	}
	if c.Decode.Workers < 0 {
		return errors.Newf("decode.workers must not be negative, got %d", c.Decode.Workers)
	}
	return nil
}

// Registry returns the built-in CRS registry extended with the configured
// systems.
func (c *Config) Registry() (gml.Registry, error) {
	reg := gml.NewStaticRegistry()
	for _, def := range c.CRS {
		err := reg.Register(gml.CRS{
			Authority: def.Authority,
			Code:      def.Code,
			Name:      def.Name,
			Dimension: def.Dimension,
		})
		if err != nil {
			return nil, errors.Wrap(err, "crs")
		}
	}
	return reg, nil
}

// Criterion returns the linearization bounds, using the defaults for unset
// values.
func (c *Config) Criterion() gml.Criterion {
	crit := gml.DefaultCriterion()
	if c.Linearize.MaxError > 0 {
		crit.MaxError = c.Linearize.MaxError
	}
	if c.Linearize.MaxPoints > 0 {
		crit.MaxPoints = c.Linearize.MaxPoints
	}
	return crit
}

// Strategy returns the linearization strategy for output and export.
func (c *Config) Strategy() gml.Strategy {
	return gml.NewSubdivision(c.Criterion())
}

func (c *Config) decodeOptions(log logrus.FieldLogger) (gml.DecodeOptions, error) {
	reg, err := c.Registry()
	if err != nil {
		return gml.DecodeOptions{}, err
	}
	opts := gml.DefaultDecodeOptions()
	opts.Registry = reg
	opts.Logger = log
	opts.ValidateIDs = c.Decode.ValidateIDs
	opts.MaxDepth = c.Decode.MaxDepth
	if c.Decode.CacheMB > 0 {
		opts.Cache = gml.NewDocumentCache(int64(c.Decode.CacheMB) << 20)
	}
	return opts, nil
}

func (c *Config) loadOptions(log logrus.FieldLogger) (gml.LoadOptions, error) {
	d, err := gml.ParseDialect(c.Decode.Dialect)
	if err != nil {
		return gml.LoadOptions{}, err
	}
	opts := gml.DefaultLoadOptions(d)
	opts.Decode, err = c.decodeOptions(log)
	if err != nil {
		return gml.LoadOptions{}, err
	}
	opts.Logger = log
	opts.SkipErrors = c.Decode.SkipErrors
	switch c.Decode.Workers {
	case 0:
	case 1:
		opts.Parallel = false
	default:
		opts.Workers = c.Decode.Workers
	}
	return opts, nil
}

func (c *Config) encodeOptions(log logrus.FieldLogger) gml.EncodeOptions {
	opts := gml.DefaultEncodeOptions()
	opts.Logger = log
	opts.GenerateIDs = c.Encode.GenerateIDs
	if c.Encode.Linearize {
		opts.Strategy = c.Strategy()
	}
	switch c.Encode.SRSName {
	case "id":
		opts.SRSName = (*gml.CRS).ID
	case "urn":
		opts.SRSName = (*gml.CRS).URN
	}
	return opts
}

// fetcher returns the fetcher used to resolve remote references.
func (c *Config) fetcher() gml.Fetcher {
	client := &http.Client{Timeout: c.Decode.HTTPTimeout.Duration}
	return locationFetcher{http: gml.HTTPFetcher{Client: client}}
}

// duration is a time.Duration read from a TOML string such as "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}
