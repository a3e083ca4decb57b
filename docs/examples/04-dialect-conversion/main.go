package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func main() {
	doc, err := gml.DecodeFile("parcels.gml", gml.GML32, gml.DefaultDecodeOptions())
	if err != nil {
		log.Fatal(err)
	}

	// GML 2 has no curves: without a strategy arcs fail to encode
	strict, err := gml.NewEncoder(gml.GML2, gml.DefaultEncodeOptions())
	if err != nil {
		log.Fatal(err)
	}

	// With a strategy they are approximated by line strings
	opts := gml.DefaultEncodeOptions()
	opts.Strategy = gml.NewSubdivision(gml.Criterion{MaxError: 0.01, MaxPoints: 256})
	lossy, err := gml.NewEncoder(gml.GML2, opts)
	if err != nil {
		log.Fatal(err)
	}

	sink := gml.NewSink(os.Stdout, gml.GML2)
	for _, g := range doc.Geometries {
		err := strict.Encode(sink, g)
		var unsupported *gml.ErrUnsupported
		if errors.As(err, &unsupported) {
			fmt.Fprintf(os.Stderr, "\n%s needs linearization: %v\n", g.ID(), err)
			err = lossy.Encode(sink, g)
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println()
	}
}
