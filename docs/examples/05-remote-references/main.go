package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func main() {
	// Fetched documents are cached across the documents that share them
	opts := gml.DefaultDecodeOptions()
	opts.Cache = gml.NewDocumentCache(64 << 20)

	doc, err := gml.DecodeFile("network.gml", gml.GML32, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("References into other documents: %d\n", len(doc.Context().RemoteRefs()))
	for _, ref := range doc.Context().RemoteRefs() {
		fmt.Printf("  %s\n", ref.Href)
	}

	// Relative references are resolved against the document location
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := doc.ResolveRemoteRefs(ctx, gml.FileFetcher{}); err != nil {
		log.Fatal(err)
	}

	// Documents published over HTTP
	remote, err := gml.DecodeFile("links.gml", gml.GML32, opts)
	if err != nil {
		log.Fatal(err)
	}
	remote.Location = "https://example.com/data/links.gml"
	fetcher := gml.HTTPFetcher{Client: &http.Client{Timeout: 10 * time.Second}}
	if err := remote.ResolveRemoteRefs(ctx, fetcher); err != nil {
		log.Fatal(err)
	}

	stats := opts.Cache.Stats()
	fmt.Printf("Cache: %d documents, %d hits, %d misses\n", stats.Documents, stats.Hits, stats.Misses)
}
