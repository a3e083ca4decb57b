package gml

import (
	"context"
	"io"
	"os"

	"github.com/beetlebugorg/gml/internal/xmlstream"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Document holds the geometries decoded from one XML document.
type Document struct {
	// Location is the path or URL the document was read from, when known.
	// Relative remote references are resolved against it.
	Location string

	// Geometries are the outermost geometry and envelope elements in
	// document order. Geometries nested in them are reachable through the
	// returned values, not listed separately.
	Geometries []Geometry

	decoder *Decoder
	size    int64 // bytes read
}

// Dialect returns the dialect the document was decoded as.
func (doc *Document) Dialect() Dialect { return doc.decoder.dialect }

// Context returns the reference resolution context of the document.
func (doc *Document) Context() *Context { return doc.decoder.Context() }

// Lookup returns the geometry with the given gml:id or gid.
func (doc *Document) Lookup(id string) (Geometry, bool) {
	return doc.decoder.Context().Lookup(id)
}

// DecodeDocument scans r for geometry and envelope elements at any depth,
// decodes each of them and resolves the local references between them.
// Elements that are not geometries, such as feature wrappers, are crossed
// without interpretation.
func (d *Decoder) DecodeDocument(r io.Reader) (*Document, error) {
	cr := &countingReader{r: r}
	cur := xmlstream.NewCursor(cr)
	doc := &Document{decoder: d}
	for {
		err := cur.NextStart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !d.IsGeometryElement(cur.Name()) {
			continue
		}
		g, err := d.Decode(cur)
		if err != nil {
			return nil, err
		}
		doc.Geometries = append(doc.Geometries, g)
	}
	if err := d.ResolveLocalRefs(); err != nil {
		return nil, err
	}
	doc.size = cr.n

	d.opts.Logger.WithFields(logrus.Fields{
		"dialect":    d.dialect.String(),
		"geometries": len(doc.Geometries),
		"ids":        d.Context().IDs(),
		"remote":     len(d.Context().RemoteRefs()),
	}).Debug("decoded document")
	return doc, nil
}

// DecodeFile decodes the document at path with a fresh decoder.
func DecodeFile(path string, d Dialect, opts DecodeOptions) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open document")
	}
	defer f.Close()

	dec, err := NewDecoder(d, opts)
	if err != nil {
		return nil, err
	}
	doc, err := dec.DecodeDocument(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	doc.Location = path
	return doc, nil
}

// ResolveRemoteRefs fetches every document that unresolved references point
// into, decodes it in the same dialect and binds the references to the
// geometries it defines. Fetched documents go through the decoder's
// DocumentCache when one is configured. References into other documents
// made by the fetched documents themselves are left unresolved.
func (doc *Document) ResolveRemoteRefs(ctx context.Context, f Fetcher) error {
	c := doc.decoder.Context()
	pending := c.RemoteRefs()
	if len(pending) == 0 {
		return nil
	}

	var locations []string
	wanted := map[string][]string{}
	for _, r := range pending {
		if _, ok := wanted[r.Location]; !ok {
			locations = append(locations, r.Location)
		}
		wanted[r.Location] = append(wanted[r.Location], r.Fragment)
	}

	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return err
		}
		remote, err := doc.decoder.fetch(ctx, f, resolveLocation(doc.Location, loc))
		if err != nil {
			return errors.Wrapf(err, "fetching %q", loc)
		}
		for _, id := range wanted[loc] {
			if g, ok := remote.Lookup(id); ok {
				c.RegisterRemote(loc, id, g)
			}
		}
	}

	doc.decoder.opts.Logger.WithFields(logrus.Fields{
		"documents":  len(locations),
		"references": len(pending),
	}).Debug("resolving remote references")
	return c.ResolveRemoteRefs()
}

// fetch loads and decodes the document at location, through the cache when
// one is configured.
func (d *Decoder) fetch(ctx context.Context, f Fetcher, location string) (*Document, error) {
	load := func() (*Document, error) {
		rc, err := f.Fetch(ctx, location)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		sub, err := NewDecoder(d.dialect, d.opts)
		if err != nil {
			return nil, err
		}
		doc, err := sub.DecodeDocument(rc)
		if err != nil {
			return nil, err
		}
		doc.Location = location
		return doc, nil
	}
	if d.opts.Cache == nil {
		return load()
	}
	return d.opts.Cache.Get(d.dialect.String()+" "+location, load)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
