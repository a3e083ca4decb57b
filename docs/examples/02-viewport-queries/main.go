package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func main() {
	// Decode the documents covering the area
	docs, errs := gml.DecodeFiles([]string{"harbour.gml", "channels.gml"}, gml.DefaultLoadOptions(gml.GML32))
	for _, err := range errs {
		log.Printf("skipped: %v", err)
	}

	index := gml.BuildIndex(docs)

	// Query the R-tree for geometries in the viewport (Boston Harbor area)
	visible := index.Query(gml.XY(-71.1, 42.3), gml.XY(-71.0, 42.4), gml.QueryOptions{})

	fmt.Printf("Visible geometries: %d of %d\n", len(visible), index.Count())
	for _, e := range visible {
		fmt.Printf("  %s %s (%s)\n", e.Geometry.Kind(), e.Geometry.ID(), e.Location)
	}

	// Only points
	points := index.Query(gml.XY(-71.1, 42.3), gml.XY(-71.0, 42.4), gml.QueryOptions{
		Kinds: []gml.Kind{gml.KindPoint},
	})
	fmt.Printf("Visible points: %d\n", len(points))
}
