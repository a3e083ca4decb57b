package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func main() {
	// Decode every geometry of a GML 3.2 document
	doc, err := gml.DecodeFile("roads.gml", gml.GML32, gml.DefaultDecodeOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Print document info
	fmt.Printf("Dialect: GML %s\n", doc.Dialect())
	fmt.Printf("Geometries: %d\n", len(doc.Geometries))
	for _, g := range doc.Geometries {
		fmt.Printf("  %s %s\n", g.Kind(), g.ID())
	}

	// Get document bounds
	if bounds, ok := gml.BuildIndex([]*gml.Document{doc}).Bounds(); ok {
		fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
			bounds.Min.X, bounds.Min.Y,
			bounds.Max.X, bounds.Max.Y)
	}
}
