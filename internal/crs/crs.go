// Package crs binds srsName identifiers to coordinate reference system handles
// and implements the inheritance rule between nested geometries.
package crs

import (
	"fmt"
	"strings"
	"sync"
)

// CRS is a handle to a coordinate reference system known to a Registry.
//
// Handles are compared by authority and code, never by pointer, so two
// registries that define the same system produce equal handles.
type CRS struct {
	Authority string // "EPSG" or "OGC"
	Code      string // "4326", "CRS84"
	Name      string // human readable name
	Dimension int    // number of axes (2 or 3)
}

// ID returns the short identifier, e.g. "EPSG:4326".
func (c *CRS) ID() string {
	if c == nil {
		return ""
	}
	return c.Authority + ":" + c.Code
}

// URN returns the OGC URN form, e.g. "urn:ogc:def:crs:EPSG::4326".
func (c *CRS) URN() string {
	if c == nil {
		return ""
	}
	if c.Authority == "OGC" {
		return "urn:ogc:def:crs:OGC:1.3:" + c.Code
	}
	return "urn:ogc:def:crs:" + c.Authority + "::" + c.Code
}

// Equal reports whether both handles denote the same system. Two nil handles
// are equal.
func (c *CRS) Equal(o *CRS) bool {
	if c == nil || o == nil {
		return c == nil && o == nil
	}
	return c.Authority == o.Authority && c.Code == o.Code
}

func (c *CRS) String() string {
	if c == nil {
		return "<undefined>"
	}
	if c.Name != "" {
		return fmt.Sprintf("%s (%s)", c.ID(), c.Name)
	}
	return c.ID()
}

// Registry resolves identifiers to CRS handles.
type Registry interface {
	// Lookup returns the CRS for the identifier or *ErrUnknownCRS.
	Lookup(id string) (*CRS, error)
}

// ErrUnknownCRS indicates an srsName that the registry cannot resolve.
type ErrUnknownCRS struct {
	ID string
}

func (e *ErrUnknownCRS) Error() string {
	return fmt.Sprintf("unknown CRS %q", e.ID)
}

// StaticRegistry is an in-memory registry keyed by normalized identifier.
// It is safe for concurrent use.
type StaticRegistry struct {
	mu      sync.RWMutex
	systems map[string]*CRS
}

var builtin = []CRS{
	{Authority: "EPSG", Code: "4326", Name: "WGS 84", Dimension: 2},
	{Authority: "EPSG", Code: "4979", Name: "WGS 84 (3D)", Dimension: 3},
	{Authority: "EPSG", Code: "4258", Name: "ETRS89", Dimension: 2},
	{Authority: "EPSG", Code: "4269", Name: "NAD83", Dimension: 2},
	{Authority: "EPSG", Code: "3857", Name: "WGS 84 / Pseudo-Mercator", Dimension: 2},
	{Authority: "EPSG", Code: "25832", Name: "ETRS89 / UTM zone 32N", Dimension: 2},
	{Authority: "EPSG", Code: "25833", Name: "ETRS89 / UTM zone 33N", Dimension: 2},
	{Authority: "EPSG", Code: "31466", Name: "DHDN / 3-degree Gauss-Kruger zone 2", Dimension: 2},
	{Authority: "EPSG", Code: "31467", Name: "DHDN / 3-degree Gauss-Kruger zone 3", Dimension: 2},
	{Authority: "EPSG", Code: "31468", Name: "DHDN / 3-degree Gauss-Kruger zone 4", Dimension: 2},
	{Authority: "EPSG", Code: "32632", Name: "WGS 84 / UTM zone 32N", Dimension: 2},
	{Authority: "OGC", Code: "CRS84", Name: "WGS 84 longitude-latitude", Dimension: 2},
}

// NewStaticRegistry returns a registry preloaded with common EPSG and OGC
// systems.
func NewStaticRegistry() *StaticRegistry {
	r := &StaticRegistry{systems: make(map[string]*CRS, len(builtin))}
	for i := range builtin {
		c := builtin[i]
		r.systems[c.ID()] = &c
	}
	return r
}

// Register adds or replaces a system.
func (r *StaticRegistry) Register(c CRS) error {
	if c.Authority == "" || c.Code == "" {
		return fmt.Errorf("crs: authority and code are required")
	}
	if c.Dimension == 0 {
		c.Dimension = 2
	}
	if c.Dimension != 2 && c.Dimension != 3 {
		return fmt.Errorf("crs %s: dimension must be 2 or 3, got %d", c.ID(), c.Dimension)
	}
	c.Authority = strings.ToUpper(c.Authority)
	r.mu.Lock()
	r.systems[c.ID()] = &c
	r.mu.Unlock()
	return nil
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(id string) (*CRS, error) {
	key, ok := Normalize(id)
	if !ok {
		return nil, &ErrUnknownCRS{ID: id}
	}
	r.mu.RLock()
	c, found := r.systems[key]
	r.mu.RUnlock()
	if !found {
		return nil, &ErrUnknownCRS{ID: id}
	}
	return c, nil
}

// Normalize maps the identifier syntaxes used by the three GML dialects to
// the short "AUTHORITY:CODE" form.
//
// Accepted forms:
//   - EPSG:4326, CRS:84
//   - urn:ogc:def:crs:EPSG::4326, urn:ogc:def:crs:EPSG:6.6:4326
//   - urn:x-ogc:def:crs:EPSG:4326
//   - http://www.opengis.net/def/crs/EPSG/0/4326
//   - http://www.opengis.net/gml/srs/epsg.xml#4326
func Normalize(id string) (string, bool) {
	s := strings.TrimSpace(id)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "http://www.opengis.net/gml/srs/epsg.xml#"):
		return key("EPSG", s[len("http://www.opengis.net/gml/srs/epsg.xml#"):])
	case strings.HasPrefix(lower, "http://www.opengis.net/def/crs/"):
		parts := strings.Split(s[len("http://www.opengis.net/def/crs/"):], "/")
		if len(parts) != 3 {
			return "", false
		}
		return key(parts[0], parts[2])
	case strings.HasPrefix(lower, "urn:ogc:def:crs:"), strings.HasPrefix(lower, "urn:x-ogc:def:crs:"):
		rest := s[strings.Index(lower, "crs:")+len("crs:"):]
		parts := strings.Split(rest, ":")
		if len(parts) < 2 {
			return "", false
		}
		return key(parts[0], parts[len(parts)-1])
	case lower == "crs:84":
		return "OGC:CRS84", true
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", false
	}
	return key(parts[0], parts[1])
}

func key(authority, code string) (string, bool) {
	authority = strings.ToUpper(strings.TrimSpace(authority))
	code = strings.TrimSpace(code)
	if authority == "" || code == "" {
		return "", false
	}
	if authority == "OGC" && (code == "84" || strings.EqualFold(code, "CRS84")) {
		return "OGC:CRS84", true
	}
	return authority + ":" + code, true
}

// Resolve applies the inheritance rule: an explicit identifier on the
// current element wins over the CRS inherited from the nearest ancestor that
// declared one; with neither, the CRS is undefined (nil, no error).
func Resolve(reg Registry, explicit string, inherited *CRS) (*CRS, error) {
	if strings.TrimSpace(explicit) == "" {
		return inherited, nil
	}
	if reg == nil {
		return nil, &ErrUnknownCRS{ID: explicit}
	}
	return reg.Lookup(explicit)
}

// Emit returns the CRS an encoder has to write on an element whose geometry
// carries own, given the nearest CRS already written by an ancestor. It
// returns nil when the attribute must be omitted.
func Emit(own, ancestor *CRS) *CRS {
	if own == nil || own.Equal(ancestor) {
		return nil
	}
	return own
}
