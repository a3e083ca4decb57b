package gml

import (
	"encoding/json"
	"strconv"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/beetlebugorg/gml/internal/linearize"
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ExportOptions controls conversion to go-geom values and their WKT and
// GeoJSON serializations.
type ExportOptions struct {
	// Strategy linearizes curves and non-polygon patches, which simple
	// features cannot express. Nil uses subdivision with the default
	// criterion.
	Strategy Strategy

	// MaxDecimalDigits rounds written coordinates. Zero keeps full
	// precision.
	MaxDecimalDigits int

	// CRS adds a named "crs" member to GeoJSON output.
	CRS bool

	// BBox adds a "bbox" member to GeoJSON output.
	BBox bool
}

// ToGeom converts g to a simple features value. Curves become line strings,
// surfaces polygons or multi polygons, solids the multi polygon of their
// shells, and envelopes their rectangle. EPSG systems set the SRID.
func ToGeom(g Geometry, s Strategy) (geom.T, error) {
	if g == nil {
		return nil, errors.New("nil geometry")
	}
	if s == nil {
		s = linearize.NewSubdivision(linearize.DefaultCriterion(), nil)
	}
	c := converter{s: s, layout: geom.XY, path: map[Geometry]bool{}}
	if g.Dimension() == 3 {
		c.layout = geom.XYZ
	}
	t, err := c.convert(g)
	if err != nil {
		return nil, errors.Wrapf(err, "converting %v", g.Kind())
	}
	if srid := sridOf(g.CRS()); srid != 0 {
		setSRID(t, srid)
	}
	return t, nil
}

// MarshalWKT returns the well-known text of g.
func MarshalWKT(g Geometry, opts ExportOptions) (string, error) {
	t, err := ToGeom(g, opts.Strategy)
	if err != nil {
		return "", err
	}
	if opts.MaxDecimalDigits > 0 {
		return wkt.Marshal(t, wkt.EncodeOptionWithMaxDecimalDigits(opts.MaxDecimalDigits))
	}
	return wkt.Marshal(t)
}

// MarshalGeoJSON returns the GeoJSON geometry object of g.
func MarshalGeoJSON(g Geometry, opts ExportOptions) ([]byte, error) {
	t, err := ToGeom(g, opts.Strategy)
	if err != nil {
		return nil, err
	}
	var options []geojson.EncodeGeometryOption
	if opts.MaxDecimalDigits > 0 {
		options = append(options, geojson.EncodeGeometryWithMaxDecimalDigits(opts.MaxDecimalDigits))
	}
	if opts.BBox {
		options = append(options, geojson.EncodeGeometryWithBBox())
	}
	if opts.CRS && g.CRS() != nil {
		options = append(options, geojson.EncodeGeometryWithCRS(&geojson.CRS{
			Type:       "name",
			Properties: map[string]interface{}{"name": g.CRS().URN()},
		}))
	}
	return geojson.Marshal(t, options...)
}

// FeatureCollection returns one GeoJSON feature per top-level geometry of
// the document, identified by its gml:id and carrying its kind and srsName
// as properties.
func (doc *Document) FeatureCollection(opts ExportOptions) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{}
	for _, g := range doc.Geometries {
		t, err := ToGeom(g, opts.Strategy)
		if err != nil {
			return nil, err
		}
		props := map[string]interface{}{"kind": g.Kind().String()}
		if g.CRS() != nil {
			props["srsName"] = g.CRS().ID()
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         g.ID(),
			Geometry:   t,
			Properties: props,
		})
	}
	return fc, nil
}

// MarshalGeoJSON returns the document as a GeoJSON FeatureCollection.
func (doc *Document) MarshalGeoJSON(opts ExportOptions) ([]byte, error) {
	fc, err := doc.FeatureCollection(opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fc)
}

type converter struct {
	s      Strategy
	layout geom.Layout

	// path holds the geometries being converted, outermost first, so that
	// aggregates reaching themselves through references fail instead of
	// recursing forever.
	path map[Geometry]bool
}

func (c converter) convert(g Geometry) (geom.T, error) {
	t := geometry.Unwrap(g)
	if t != nil {
		if c.path[t] {
			return nil, errCycle(t)
		}
		c.path[t] = true
		defer delete(c.path, t)
	}
	switch v := t.(type) {
	case nil:
		return nil, errors.Newf("unresolved reference %q", g.ID())
	case *geometry.Point:
		return geom.NewPointFlat(c.layout, c.flat(v.Pos)), nil
	case *geometry.Envelope:
		return envelopePolygon(v), nil
	case *geometry.Curve, *geometry.OrientableCurve, *geometry.Ring:
		return c.lineString(v)
	case *geometry.Surface:
		if v.Kind() == geometry.KindPolygon {
			return c.polygon(v.Patches[0])
		}
		return c.multiPolygon(v)
	case *geometry.OrientableSurface, *geometry.Solid:
		return c.multiPolygon(v)
	case *geometry.Composite:
		switch v.Kind() {
		case geometry.KindCompositeCurve:
			return c.lineString(v)
		case geometry.KindCompositeSurface:
			return c.multiPolygon(v)
		}
		return c.collection(v.Members)
	case *geometry.Multi:
		return c.multi(v)
	}
	return nil, errors.Newf("%v has no simple features form", g.Kind())
}

func (c converter) multi(m *geometry.Multi) (geom.T, error) {
	switch m.Kind() {
	case geometry.KindMultiPoint:
		mp := geom.NewMultiPoint(c.layout)
		for _, member := range m.Members {
			t, err := c.convert(member)
			if err != nil {
				return nil, err
			}
			p, ok := t.(*geom.Point)
			if !ok {
				return nil, errors.Newf("multi point member is a %v", member.Kind())
			}
			if err := mp.Push(p); err != nil {
				return nil, err
			}
		}
		return mp, nil
	case geometry.KindMultiCurve, geometry.KindMultiLineString:
		mls := geom.NewMultiLineString(c.layout)
		for _, member := range m.Members {
			ls, err := c.lineString(member)
			if err != nil {
				return nil, err
			}
			if err := mls.Push(ls); err != nil {
				return nil, err
			}
		}
		return mls, nil
	case geometry.KindMultiSurface, geometry.KindMultiPolygon:
		return c.multiPolygon(m)
	}
	return c.collection(m.Members)
}

func (c converter) collection(members []Geometry) (*geom.GeometryCollection, error) {
	gc := geom.NewGeometryCollection()
	for _, member := range members {
		t, err := c.convert(member)
		if err != nil {
			return nil, err
		}
		if err := gc.Push(t); err != nil {
			return nil, err
		}
	}
	return gc, nil
}

func (c converter) lineString(g Geometry) (*geom.LineString, error) {
	pts, err := linearize.Positions(c.s, g)
	if err != nil {
		return nil, err
	}
	return geom.NewLineStringFlat(c.layout, c.flatAll(pts)), nil
}

func (c converter) multiPolygon(g Geometry) (*geom.MultiPolygon, error) {
	patches, err := surfacePatches(g, nil, map[Geometry]bool{})
	if err != nil {
		return nil, err
	}
	mp := geom.NewMultiPolygon(c.layout)
	for _, p := range patches {
		poly, err := c.polygon(p)
		if err != nil {
			return nil, err
		}
		if err := mp.Push(poly); err != nil {
			return nil, err
		}
	}
	return mp, nil
}

func (c converter) polygon(p geometry.Patch) (*geom.Polygon, error) {
	pp, err := c.s.Patch(p)
	if err != nil {
		return nil, err
	}
	var flat []float64
	var ends []int
	for _, r := range append([]*geometry.Ring{pp.Exterior}, pp.Interiors...) {
		pts, err := linearize.Positions(c.s, r)
		if err != nil {
			return nil, err
		}
		flat = append(flat, c.flatAll(pts)...)
		ends = append(ends, len(flat))
	}
	return geom.NewPolygonFlat(c.layout, flat, ends), nil
}

// surfacePatches collects the patches of every surface reachable from g:
// surface members of composites and aggregates, and the shells of solids.
func surfacePatches(g Geometry, dst []geometry.Patch, path map[Geometry]bool) ([]geometry.Patch, error) {
	t := geometry.Unwrap(g)
	if t != nil {
		if path[t] {
			return nil, errCycle(t)
		}
		path[t] = true
		defer delete(path, t)
	}
	switch v := t.(type) {
	case nil:
		return nil, errors.Newf("unresolved reference %q", g.ID())
	case *geometry.Surface:
		return append(dst, v.Patches...), nil
	case *geometry.OrientableSurface:
		patches, ok := v.Patches()
		if !ok {
			return nil, errors.Newf("orientable surface %q has no resolvable patches", v.ID())
		}
		return append(dst, patches...), nil
	case *geometry.Solid:
		var err error
		for _, shell := range append([]Geometry{v.Exterior}, v.Interiors...) {
			if dst, err = surfacePatches(shell, dst, path); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case *geometry.Composite:
		return memberPatches(v.Members, dst, path)
	case *geometry.Multi:
		return memberPatches(v.Members, dst, path)
	}
	return nil, errors.Newf("%v is not a surface", g.Kind())
}

func memberPatches(members []Geometry, dst []geometry.Patch, path map[Geometry]bool) ([]geometry.Patch, error) {
	var err error
	for _, m := range members {
		if dst, err = surfacePatches(m, dst, path); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func errCycle(g Geometry) error {
	return errors.Newf("%v %q contains itself through references", g.Kind(), g.ID())
}

func envelopePolygon(e *geometry.Envelope) *geom.Polygon {
	flat := []float64{
		e.Min.X, e.Min.Y,
		e.Max.X, e.Min.Y,
		e.Max.X, e.Max.Y,
		e.Min.X, e.Max.Y,
		e.Min.X, e.Min.Y,
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

func (c converter) flat(p Position) []float64 {
	if c.layout == geom.XYZ {
		return []float64{p.X, p.Y, p.Z}
	}
	return []float64{p.X, p.Y}
}

func (c converter) flatAll(pts []Position) []float64 {
	out := make([]float64, 0, len(pts)*c.layout.Stride())
	for _, p := range pts {
		out = append(out, c.flat(p)...)
	}
	return out
}

func sridOf(c *CRS) int {
	if c == nil || c.Authority != "EPSG" {
		return 0
	}
	n, err := strconv.Atoi(c.Code)
	if err != nil {
		return 0
	}
	return n
}

func setSRID(t geom.T, srid int) {
	switch v := t.(type) {
	case *geom.Point:
		v.SetSRID(srid)
	case *geom.LineString:
		v.SetSRID(srid)
	case *geom.Polygon:
		v.SetSRID(srid)
	case *geom.MultiPoint:
		v.SetSRID(srid)
	case *geom.MultiLineString:
		v.SetSRID(srid)
	case *geom.MultiPolygon:
		v.SetSRID(srid)
	case *geom.GeometryCollection:
		v.SetSRID(srid)
	}
}
