package main

import (
	"fmt"
	"log"
	"math"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func processGeometry(g gml.Geometry) {
	switch v := gml.Unwrap(g).(type) {
	case nil:
		fmt.Printf("Unresolved reference %s\n", g.ID())

	case *gml.Point:
		fmt.Printf("Point: %.6f, %.6f\n", v.Pos.X, v.Pos.Y)

	case *gml.Curve:
		// Segments may be straight or curved
		fmt.Printf("%s with %d segments:\n", v.Kind(), len(v.Segments))
		for i, seg := range v.Segments {
			fmt.Printf("  %d: %s from %v to %v\n", i, seg.SegmentKind(), seg.StartPosition(), seg.EndPosition())
		}

	case *gml.Surface:
		fmt.Printf("%s with %d patches\n", v.Kind(), len(v.Patches))

	case *gml.Multi:
		fmt.Printf("%s with %d members\n", v.Kind(), len(v.Members))
		for _, m := range v.Members {
			processGeometry(m)
		}

	default:
		fmt.Printf("%s\n", v.Kind())
	}
}

// Length of the linearized curve (planar, in CRS units)
func curveLength(g gml.Geometry) (float64, error) {
	t, err := gml.ToGeom(g, gml.NewSubdivision(gml.DefaultCriterion()))
	if err != nil {
		return 0, err
	}
	flat := t.FlatCoords()
	stride := t.Stride()

	length := 0.0
	for i := stride; i < len(flat); i += stride {
		dx := flat[i] - flat[i-stride]
		dy := flat[i+1] - flat[i-stride+1]
		length += math.Sqrt(dx*dx + dy*dy)
	}
	return length, nil
}

func main() {
	doc, err := gml.DecodeFile("network.gml", gml.GML31, gml.DefaultDecodeOptions())
	if err != nil {
		log.Fatal(err)
	}

	for _, g := range doc.Geometries {
		fmt.Printf("\n%s:\n", g.ID())
		processGeometry(g)

		if g.Kind() == gml.KindCurve || g.Kind() == gml.KindLineString {
			length, err := curveLength(g)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Length: %.3f\n", length)
		}

		wkt, err := gml.MarshalWKT(g, gml.ExportOptions{MaxDecimalDigits: 6})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("WKT: %s\n", wkt)
	}
}
