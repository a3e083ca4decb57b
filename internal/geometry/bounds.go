package geometry

// Bounds returns the envelope of all control positions reachable from g.
// Curved segments contribute their defining positions; circles given by
// centre contribute the centre plus and minus the radius. References are
// followed once each, so cyclic reference graphs terminate. ok is false when
// g contains no resolvable positions.
func Bounds(g Geometry) (env *Envelope, ok bool) {
	var b boundsBuilder
	b.visited = map[Geometry]bool{}
	b.geometry(g)
	if !b.any {
		return nil, false
	}
	return &Envelope{Base: Base{SRS: g.CRS()}, Min: b.min, Max: b.max}, true
}

type boundsBuilder struct {
	min, max Position
	any      bool
	visited  map[Geometry]bool
}

func (b *boundsBuilder) add(p Position) {
	if !b.any {
		b.min, b.max, b.any = p, p, true
		return
	}
	if p.X < b.min.X {
		b.min.X = p.X
	}
	if p.Y < b.min.Y {
		b.min.Y = p.Y
	}
	if p.Z < b.min.Z {
		b.min.Z = p.Z
	}
	if p.X > b.max.X {
		b.max.X = p.X
	}
	if p.Y > b.max.Y {
		b.max.Y = p.Y
	}
	if p.Z > b.max.Z {
		b.max.Z = p.Z
	}
}

func (b *boundsBuilder) geometry(g Geometry) {
	if g == nil || b.visited[g] {
		return
	}
	b.visited[g] = true

	switch v := g.(type) {
	case *Reference:
		if v.target != nil {
			b.geometry(v.target)
		}
	case *Point:
		b.add(v.Pos)
	case *Envelope:
		b.add(v.Min)
		b.add(v.Max)
	case *Curve:
		for _, s := range v.Segments {
			b.segment(s)
		}
	case *OrientableCurve:
		b.geometry(v.BaseCurve)
	case *Ring:
		for _, m := range v.Members {
			b.geometry(m)
		}
	case *Surface:
		for _, p := range v.Patches {
			b.patch(p)
		}
		if v.Tin != nil {
			for _, p := range v.Tin.ControlPoints {
				b.add(p)
			}
		}
	case *OrientableSurface:
		b.geometry(v.BaseSurface)
	case *Solid:
		b.geometry(v.Exterior)
		for _, s := range v.Interiors {
			b.geometry(s)
		}
	case *Composite:
		for _, m := range v.Members {
			b.geometry(m)
		}
	case *Multi:
		for _, m := range v.Members {
			b.geometry(m)
		}
	}
}

func (b *boundsBuilder) patch(p Patch) {
	switch v := p.(type) {
	case *PolygonPatch:
		for _, r := range v.Rings() {
			b.geometry(r)
		}
	case *Triangle:
		b.geometry(v.Exterior)
	case *Rectangle:
		b.geometry(v.Exterior)
	case *GriddedPatch:
		for _, row := range v.Rows {
			for _, pos := range row {
				b.add(pos)
			}
		}
	}
}

func (b *boundsBuilder) segment(s Segment) {
	for _, p := range ControlPositions(s) {
		b.add(p)
	}
}

// ControlPositions returns the positions that define s. For centre based
// circles and arcs these are the corners of the circle's bounding square;
// for a clothoid its end points and placement location.
func ControlPositions(s Segment) []Position {
	switch v := s.(type) {
	case *LineStringSegment:
		return v.Points
	case *Arc:
		return v.Points[:]
	case *Circle:
		return v.Points[:]
	case *ArcString:
		return v.Points
	case *ArcByBulge:
		return bulgeControl(&v.ArcStringByBulge)
	case *ArcStringByBulge:
		return bulgeControl(v)
	case *ArcByCenterPoint:
		return centerControl(v)
	case *CircleByCenterPoint:
		return centerControl(&v.ArcByCenterPoint)
	case *Geodesic:
		return v.Points
	case *GeodesicString:
		return v.Points
	case *Bezier:
		return v.Points
	case *BSpline:
		return v.Points
	case *CubicSpline:
		return v.Points
	case *Clothoid:
		return []Position{v.StartPosition(), v.Location, v.EndPosition()}
	default:
		return []Position{s.StartPosition(), s.EndPosition()}
	}
}

func bulgeControl(s *ArcStringByBulge) []Position {
	out := make([]Position, 0, 2*len(s.Points)-1)
	for i := range s.Bulges {
		out = append(out, s.Points[i], s.Midpoint(i))
	}
	return append(out, s.Points[len(s.Points)-1])
}

func centerControl(s *ArcByCenterPoint) []Position {
	c, r := s.Center, s.Radius.Value
	lo, hi := c, c
	lo.X, lo.Y = c.X-r, c.Y-r
	hi.X, hi.Y = c.X+r, c.Y+r
	return []Position{lo, hi}
}
