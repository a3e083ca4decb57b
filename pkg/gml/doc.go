// Package gml decodes and encodes GML geometry in the 2.1.2, 3.1.1 and 3.2.1
// dialects.
//
// The package is a thin dispatch layer over the dialect-specific decoder and
// encoder. A Decoder reads one geometry element at a time from a Cursor, or
// every geometry of a whole document with DecodeDocument. An Encoder writes
// geometry values to a Sink.
//
// # Basic Usage
//
//	dec, err := gml.NewDecoder(gml.GML32, gml.DefaultDecodeOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := dec.DecodeDocument(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, g := range doc.Geometries {
//	    fmt.Println(g.Kind(), g.ID())
//	}
//
// # Embedding In Feature Parsers
//
// Decode starts on the opening tag of a geometry element and returns with the
// cursor on its closing tag, so feature readers can hand geometry properties
// to the decoder from inside their own element loops:
//
//	cur := gml.NewCursor(r)
//	for cur.NextStart() == nil {
//	    if dec.IsGeometryElement(cur.Name()) {
//	        g, err := dec.Decode(cur)
//	        ...
//	    }
//	}
//	err = dec.ResolveLocalRefs()
//
// xlink:href references may point forward in the document. They are bound by
// ResolveLocalRefs; references into other documents are bound by
// Document.ResolveRemoteRefs using a Fetcher.
//
// # Encoding
//
//	enc, _ := gml.NewEncoder(gml.GML2, gml.EncodeOptions{
//	    Strategy: gml.NewSubdivision(gml.DefaultCriterion()),
//	})
//	err := enc.Encode(gml.NewSink(os.Stdout, gml.GML2), g)
//
// GML 2 cannot express curved segments or most surfaces. Without a
// linearization Strategy those geometries are rejected with
// *ErrUnsupported; with one they are approximated by line strings and
// polygons.
//
// # Export
//
// Decoded geometries convert to github.com/twpayne/go-geom values with ToGeom
// and serialize as WKT or GeoJSON with MarshalWKT and MarshalGeoJSON. Index
// builds an R-tree over geometry bounds for window queries.
package gml
