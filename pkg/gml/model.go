package gml

import "github.com/beetlebugorg/gml/internal/geometry"

// Geometry variants. Decoded values are one of these, possibly behind a
// *Reference; type switch on them after Unwrap.
type (
	Base              = geometry.Base
	Point             = geometry.Point
	Curve             = geometry.Curve
	OrientableCurve   = geometry.OrientableCurve
	Ring              = geometry.Ring
	Surface           = geometry.Surface
	OrientableSurface = geometry.OrientableSurface
	Solid             = geometry.Solid
	Composite         = geometry.Composite
	Multi             = geometry.Multi
)

// Curve segments.
type (
	Segment             = geometry.Segment
	SegmentKind         = geometry.SegmentKind
	LineStringSegment   = geometry.LineStringSegment
	Arc                 = geometry.Arc
	ArcString           = geometry.ArcString
	ArcByBulge          = geometry.ArcByBulge
	ArcStringByBulge    = geometry.ArcStringByBulge
	ArcByCenterPoint    = geometry.ArcByCenterPoint
	Circle              = geometry.Circle
	CircleByCenterPoint = geometry.CircleByCenterPoint
	Geodesic            = geometry.Geodesic
	GeodesicString      = geometry.GeodesicString
	CubicSpline         = geometry.CubicSpline
	BSpline             = geometry.BSpline
	Bezier              = geometry.Bezier
	Clothoid            = geometry.Clothoid
	Measure             = geometry.Measure
)

// Surface patches.
type (
	Patch         = geometry.Patch
	PatchKind     = geometry.PatchKind
	PolygonPatch  = geometry.PolygonPatch
	Triangle      = geometry.Triangle
	Rectangle     = geometry.Rectangle
	GriddedPatch  = geometry.GriddedPatch
	TinParameters = geometry.TinParameters
)

// Constructors validate their arguments and return *ErrInvalidGeometry
// when an invariant does not hold.
var (
	NewPoint             = geometry.NewPoint
	NewLineString        = geometry.NewLineString
	NewCurve             = geometry.NewCurve
	NewOrientableCurve   = geometry.NewOrientableCurve
	NewLinearRing        = geometry.NewLinearRing
	NewRing              = geometry.NewRing
	NewPolygon           = geometry.NewPolygon
	NewSurface           = geometry.NewSurface
	NewOrientableSurface = geometry.NewOrientableSurface
	NewSolid             = geometry.NewSolid
	NewComposite         = geometry.NewComposite
	NewMulti             = geometry.NewMulti
	NewEnvelope          = geometry.NewEnvelope

	NewLineStringSegment = geometry.NewLineStringSegment
	NewArc               = geometry.NewArc
	NewCircle            = geometry.NewCircle
	NewPolygonPatch      = geometry.NewPolygonPatch
)

// Unwrap follows resolved references to the geometry they denote. It
// returns nil for an unresolved reference.
func Unwrap(g Geometry) Geometry {
	return geometry.Unwrap(g)
}
