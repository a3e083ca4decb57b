package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func safeDecode(path string) (*gml.Document, error) {
	doc, err := gml.DecodeFile(path, gml.GML32, gml.DefaultDecodeOptions())
	if err == nil {
		return doc, nil
	}

	var (
		syntax     *gml.SyntaxError
		unexpected *gml.ErrUnexpectedElement
		malformed  *gml.ErrMalformed
		unknownCRS *gml.ErrUnknownCRS
		invalid    *gml.ErrInvalidGeometry
		unresolved *gml.ErrUnresolvedReferences
	)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("document not found: %s", path)
	case errors.As(err, &syntax):
		log.Printf("%s is not well-formed XML: %v", path, err)
	case errors.As(err, &unexpected), errors.As(err, &malformed):
		log.Printf("%s is not valid GML 3.2: %v", path, err)
	case errors.As(err, &unknownCRS):
		log.Printf("%s uses an unregistered CRS %q", path, unknownCRS.ID)
	case errors.As(err, &invalid):
		log.Printf("%s holds an invalid geometry: %v", path, err)
	case errors.As(err, &unresolved):
		log.Printf("%s references missing ids %v", path, unresolved.IDs)
	}
	return nil, err
}

func main() {
	doc, err := safeDecode("roads.gml")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	fmt.Printf("Geometries: %d\n", len(doc.Geometries))

	// Try to decode a missing document
	_, err = safeDecode("missing.gml")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
