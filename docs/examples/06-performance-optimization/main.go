package main

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"

	"github.com/beetlebugorg/gml/pkg/gml"
)

// Decode a directory of documents with one worker per CPU
func decodeParallel(paths []string) []*gml.Document {
	opts := gml.DefaultLoadOptions(gml.GML31)
	opts.Workers = runtime.NumCPU()
	opts.Progress = func(loaded, total int) {
		fmt.Printf("\rDecoded %d/%d", loaded, total)
	}

	docs, errs := gml.DecodeFiles(paths, opts)
	fmt.Println()
	for _, err := range errs {
		log.Printf("skipped: %v", err)
	}
	return docs
}

// Trusted input: skip identifier checks and stop on the first failure
func decodeTrusted(paths []string) []*gml.Document {
	opts := gml.DefaultLoadOptions(gml.GML31)
	opts.Decode.ValidateIDs = false
	opts.SkipErrors = false

	docs, errs := gml.DecodeFiles(paths, opts)
	if len(errs) > 0 {
		log.Fatal(errs[0])
	}
	return docs
}

func main() {
	paths, err := filepath.Glob("tiles/*.gml")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Parallel decoding ===")
	docs := decodeParallel(paths)
	fmt.Printf("Documents decoded: %d\n", len(docs))

	fmt.Println("\n=== Trusted input ===")
	docs = decodeTrusted(paths)
	fmt.Printf("Geometries indexed: %d\n", gml.BuildIndex(docs).Count())
}
