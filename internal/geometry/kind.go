package geometry

// Kind identifies the concrete geometry variant. The set is closed; every
// encoder and decoder switches over it exhaustively.
type Kind int

const (
	KindPoint Kind = iota + 1
	KindLineString
	KindCurve
	KindOrientableCurve
	KindCompositeCurve
	KindLinearRing
	KindRing
	KindPolygon
	KindSurface
	KindPolyhedralSurface
	KindTriangulatedSurface
	KindTin
	KindOrientableSurface
	KindCompositeSurface
	KindSolid
	KindCompositeSolid
	KindGeometricComplex
	KindMultiPoint
	KindMultiCurve
	KindMultiLineString
	KindMultiSurface
	KindMultiPolygon
	KindMultiSolid
	KindMultiGeometry
	KindEnvelope
	KindReference
)

var kindNames = map[Kind]string{
	KindPoint:               "Point",
	KindLineString:          "LineString",
	KindCurve:               "Curve",
	KindOrientableCurve:     "OrientableCurve",
	KindCompositeCurve:      "CompositeCurve",
	KindLinearRing:          "LinearRing",
	KindRing:                "Ring",
	KindPolygon:             "Polygon",
	KindSurface:             "Surface",
	KindPolyhedralSurface:   "PolyhedralSurface",
	KindTriangulatedSurface: "TriangulatedSurface",
	KindTin:                 "Tin",
	KindOrientableSurface:   "OrientableSurface",
	KindCompositeSurface:    "CompositeSurface",
	KindSolid:               "Solid",
	KindCompositeSolid:      "CompositeSolid",
	KindGeometricComplex:    "GeometricComplex",
	KindMultiPoint:          "MultiPoint",
	KindMultiCurve:          "MultiCurve",
	KindMultiLineString:     "MultiLineString",
	KindMultiSurface:        "MultiSurface",
	KindMultiPolygon:        "MultiPolygon",
	KindMultiSolid:          "MultiSolid",
	KindMultiGeometry:       "MultiGeometry",
	KindEnvelope:            "Envelope",
	KindReference:           "Reference",
}

// String returns the GML element name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Family groups kinds by what they may substitute for in a property.
type Family int

const (
	FamilyAny Family = iota
	FamilyPoint
	FamilyCurve
	FamilyRing
	FamilySurface
	FamilySolid
	FamilyAggregate
	FamilyEnvelope
)

func (f Family) String() string {
	switch f {
	case FamilyPoint:
		return "point"
	case FamilyCurve:
		return "curve"
	case FamilyRing:
		return "ring"
	case FamilySurface:
		return "surface"
	case FamilySolid:
		return "solid"
	case FamilyAggregate:
		return "aggregate"
	case FamilyEnvelope:
		return "envelope"
	default:
		return "geometry"
	}
}

// Family returns the family of the kind.
func (k Kind) Family() Family {
	switch k {
	case KindPoint:
		return FamilyPoint
	case KindLineString, KindCurve, KindOrientableCurve, KindCompositeCurve:
		return FamilyCurve
	case KindLinearRing, KindRing:
		return FamilyRing
	case KindPolygon, KindSurface, KindPolyhedralSurface, KindTriangulatedSurface, KindTin,
		KindOrientableSurface, KindCompositeSurface:
		return FamilySurface
	case KindSolid, KindCompositeSolid:
		return FamilySolid
	case KindGeometricComplex, KindMultiPoint, KindMultiCurve, KindMultiLineString, KindMultiSurface,
		KindMultiPolygon, KindMultiSolid, KindMultiGeometry:
		return FamilyAggregate
	case KindEnvelope:
		return FamilyEnvelope
	default:
		return FamilyAny
	}
}

// Accepts reports whether a geometry of kind k may fill a slot that expects
// family f. FamilyAny accepts every geometry but not envelopes.
func (f Family) Accepts(k Kind) bool {
	if f == FamilyAny {
		return k != KindEnvelope
	}
	return k.Family() == f
}

// SegmentKind identifies a curve segment variant.
type SegmentKind int

const (
	SegmentLineString SegmentKind = iota + 1
	SegmentArc
	SegmentArcByBulge
	SegmentArcByCenterPoint
	SegmentCircle
	SegmentCircleByCenterPoint
	SegmentArcString
	SegmentArcStringByBulge
	SegmentGeodesic
	SegmentGeodesicString
	SegmentBezier
	SegmentBSpline
	SegmentClothoid
	SegmentCubicSpline
)

var segmentNames = map[SegmentKind]string{
	SegmentLineString:          "LineStringSegment",
	SegmentArc:                 "Arc",
	SegmentArcByBulge:          "ArcByBulge",
	SegmentArcByCenterPoint:    "ArcByCenterPoint",
	SegmentCircle:              "Circle",
	SegmentCircleByCenterPoint: "CircleByCenterPoint",
	SegmentArcString:           "ArcString",
	SegmentArcStringByBulge:    "ArcStringByBulge",
	SegmentGeodesic:            "Geodesic",
	SegmentGeodesicString:      "GeodesicString",
	SegmentBezier:              "Bezier",
	SegmentBSpline:             "BSpline",
	SegmentClothoid:            "Clothoid",
	SegmentCubicSpline:         "CubicSpline",
}

// String returns the GML element name of the segment kind.
func (k SegmentKind) String() string {
	if s, ok := segmentNames[k]; ok {
		return s
	}
	return "Unknown"
}

// PatchKind identifies a surface patch variant.
type PatchKind int

const (
	PatchPolygon PatchKind = iota + 1
	PatchTriangle
	PatchRectangle
	PatchCone
	PatchCylinder
	PatchSphere
)

func (k PatchKind) String() string {
	switch k {
	case PatchPolygon:
		return "PolygonPatch"
	case PatchTriangle:
		return "Triangle"
	case PatchRectangle:
		return "Rectangle"
	case PatchCone:
		return "Cone"
	case PatchCylinder:
		return "Cylinder"
	case PatchSphere:
		return "Sphere"
	default:
		return "Unknown"
	}
}
