// Package linearize approximates curved segments and non-planar patches by
// line strings and polygon patches.
package linearize

import (
	"container/heap"
	"math"
	"sort"

	"github.com/beetlebugorg/gml/internal/geometry"
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
	"github.com/sirupsen/logrus"
)

// Strategy turns curve segments and surface patches into their linear
// counterparts.
type Strategy interface {
	Segment(seg geometry.Segment) (*geometry.LineStringSegment, error)
	Patch(p geometry.Patch) (*geometry.PolygonPatch, error)
}

// Criterion bounds the approximation. Refinement stops when every chord
// deviates from the true curve by at most MaxError (in CRS units) or when a
// segment reaches MaxPoints positions, whichever comes first. A zero
// MaxError refines until MaxPoints.
//
// MaxPoints is a cap on refinement, not on the result. The defining
// positions of a segment are always kept: every control point of an arc
// string, and the start, quarter and end points of a circle or a center
// point arc. A MaxPoints below that count yields exactly those positions.
type Criterion struct {
	MaxError  float64
	MaxPoints int
}

// DefaultCriterion returns the criterion used when none is configured.
func DefaultCriterion() Criterion {
	return Criterion{
		MaxError:  0.001,
		MaxPoints: 4096,
	}
}

// Subdivision refines each segment greedily: the chord whose midpoint is
// furthest from the curve is split first. Raising MaxPoints therefore never
// increases the deviation of the result.
type Subdivision struct {
	Criterion Criterion
	Log       logrus.FieldLogger
}

// NewSubdivision returns a subdivision strategy. A nil logger uses the
// logrus standard logger.
func NewSubdivision(c Criterion, log logrus.FieldLogger) *Subdivision {
	if c.MaxPoints <= 0 {
		c.MaxPoints = DefaultCriterion().MaxPoints
	}
	if c.MaxPoints < 2 {
		c.MaxPoints = 2
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Subdivision{Criterion: c, Log: log}
}

// Segment implements Strategy.
func (s *Subdivision) Segment(seg geometry.Segment) (*geometry.LineStringSegment, error) {
	if ls, ok := seg.(*geometry.LineStringSegment); ok {
		return ls, nil
	}
	f, err := parametricOf(seg)
	if err != nil {
		return nil, errors.Wrapf(err, "linearizing %v", seg.SegmentKind())
	}
	pts, capped := s.refine(f)
	if capped {
		s.Log.WithFields(logrus.Fields{
			"segment":    seg.SegmentKind().String(),
			"max_points": s.Criterion.MaxPoints,
			"max_error":  s.Criterion.MaxError,
		}).Warn("linearization stopped at the point limit before reaching the error bound")
	}
	return geometry.NewLineStringSegment(pts)
}

// chord is the parameter interval between two accepted positions.
type chord struct {
	t0, t1    float64
	deviation float64
}

type chordHeap []chord

func (h chordHeap) Len() int            { return len(h) }
func (h chordHeap) Less(i, j int) bool  { return h[i].deviation > h[j].deviation }
func (h chordHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *chordHeap) Push(x interface{}) { *h = append(*h, x.(chord)) }
func (h *chordHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// refine samples f at its break parameters, then splits the worst chord
// until the criterion holds. capped reports whether MaxPoints stopped the
// refinement with chords still above MaxError.
func (s *Subdivision) refine(f parametric) (pts []geometry.Position, capped bool) {
	at := make(map[float64]geometry.Position, len(f.breaks))
	for _, t := range f.breaks {
		at[t] = f.eval(t)
	}

	h := &chordHeap{}
	push := func(t0, t1 float64) {
		tm := (t0 + t1) / 2
		if tm <= t0 || tm >= t1 {
			return
		}
		heap.Push(h, chord{t0: t0, t1: t1, deviation: deviation(at[t0], at[t1], f.eval(tm))})
	}
	for i := 0; i+1 < len(f.breaks); i++ {
		push(f.breaks[i], f.breaks[i+1])
	}

	for h.Len() > 0 {
		worst := (*h)[0]
		if worst.deviation <= s.Criterion.MaxError {
			break
		}
		if len(at) >= s.Criterion.MaxPoints {
			capped = true
			break
		}
		heap.Pop(h)
		tm := (worst.t0 + worst.t1) / 2
		at[tm] = f.eval(tm)
		push(worst.t0, tm)
		push(tm, worst.t1)
	}

	ts := make([]float64, 0, len(at))
	for t := range at {
		ts = append(ts, t)
	}
	sort.Float64s(ts)
	pts = make([]geometry.Position, len(ts))
	for i, t := range ts {
		pts[i] = at[t]
	}
	return pts, capped
}

func vec(p geometry.Position) r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

func pos(v r3.Vector, dim int) geometry.Position {
	if dim == 2 {
		return geometry.XY(v.X, v.Y)
	}
	return geometry.XYZ(v.X, v.Y, v.Z)
}

// deviation returns the distance from m to the segment a-b.
func deviation(a, b, m geometry.Position) float64 {
	va, vb, vm := vec(a), vec(b), vec(m)
	ab := vb.Sub(va)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return vm.Sub(va).Norm()
	}
	t := math.Max(0, math.Min(1, vm.Sub(va).Dot(ab)/l2))
	return vm.Sub(va.Add(ab.Mul(t))).Norm()
}

// maxDeviation returns the largest distance of any probe from the polyline
// pts.
func maxDeviation(pts []geometry.Position, probes []geometry.Position) float64 {
	worst := 0.0
	for _, p := range probes {
		best := math.Inf(1)
		for i := 0; i+1 < len(pts); i++ {
			best = math.Min(best, deviation(pts[i], pts[i+1], p))
		}
		worst = math.Max(worst, best)
	}
	return worst
}
