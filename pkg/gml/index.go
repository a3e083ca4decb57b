package gml

import (
	"math"
	"sort"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/dhconnelly/rtreego"
)

// Index provides window queries over decoded geometries using an R-tree
// over their planar (X, Y) bounds. Coordinates are compared as given;
// geometries in different CRSs are not transformed.
//
// Example:
//
//	idx := gml.BuildIndex(docs)
//	hits := idx.Query(gml.XY(-71.5, 42.0), gml.XY(-71.0, 42.5), gml.QueryOptions{})
type Index struct {
	entries []*IndexEntry
	rtree   *rtreego.Rtree
}

// IndexEntry is one indexed geometry.
type IndexEntry struct {
	Geometry Geometry
	Envelope *Envelope // bounds of Geometry
	Location string    // document the geometry came from, if known

	seq int
}

// Bounds implements rtreego.Spatial.
func (e *IndexEntry) Bounds() rtreego.Rect {
	return rect(e.Envelope.Min, e.Envelope.Max)
}

// minExtent pads degenerate bounds (points, axis-parallel lines), which the
// R-tree cannot store with zero width.
const minExtent = 1e-9

func rect(min, max Position) rtreego.Rect {
	lengths := []float64{
		math.Max(max.X-min.X, minExtent),
		math.Max(max.Y-min.Y, minExtent),
	}
	r, _ := rtreego.NewRect(rtreego.Point{min.X, min.Y}, lengths)
	return r
}

// QueryOptions filters query results.
type QueryOptions struct {
	// Kinds restricts results to these geometry kinds. Empty accepts all.
	Kinds []Kind
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	// 2D, min=25 children, max=50 children
	return &Index{rtree: rtreego.NewTree(2, 25, 50)}
}

// BuildIndex indexes every top-level geometry of docs.
func BuildIndex(docs []*Document) *Index {
	idx := NewIndex()
	for _, doc := range docs {
		idx.AddDocument(doc)
	}
	return idx
}

// AddDocument indexes the top-level geometries of doc and returns how many
// had bounds.
func (idx *Index) AddDocument(doc *Document) int {
	n := 0
	for _, g := range doc.Geometries {
		if idx.Insert(g, doc.Location) {
			n++
		}
	}
	return n
}

// Insert indexes g. It returns false when g has no resolvable positions.
func (idx *Index) Insert(g Geometry, location string) bool {
	env, ok := geometry.Bounds(g)
	if !ok {
		return false
	}
	e := &IndexEntry{Geometry: g, Envelope: env, Location: location, seq: len(idx.entries)}
	idx.entries = append(idx.entries, e)
	idx.rtree.Insert(e)
	return true
}

// Query returns the entries whose bounds intersect the window spanned by the
// corners a and b, in insertion order.
func (idx *Index) Query(a, b Position, opts QueryOptions) []*IndexEntry {
	min := Position{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Dim: 2}
	max := Position{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Dim: 2}

	var result []*IndexEntry
	for _, s := range idx.rtree.SearchIntersect(rect(min, max)) {
		e := s.(*IndexEntry)
		if len(opts.Kinds) > 0 && !containsKind(opts.Kinds, geometry.Unwrap(e.Geometry).Kind()) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

// Count returns the number of indexed geometries.
func (idx *Index) Count() int {
	return len(idx.entries)
}

// All returns every entry in insertion order.
func (idx *Index) All() []*IndexEntry {
	return idx.entries
}

// Bounds returns the union of all entry bounds. ok is false for an empty
// index.
func (idx *Index) Bounds() (env *Envelope, ok bool) {
	if len(idx.entries) == 0 {
		return nil, false
	}
	first := idx.entries[0].Envelope
	out := &Envelope{Min: first.Min, Max: first.Max}
	for _, e := range idx.entries[1:] {
		out.Min = minPosition(out.Min, e.Envelope.Min)
		out.Max = maxPosition(out.Max, e.Envelope.Max)
	}
	return out, true
}

func minPosition(a, b Position) Position {
	return Position{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z), Dim: a.Dim}
}

func maxPosition(a, b Position) Position {
	return Position{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z), Dim: a.Dim}
}
