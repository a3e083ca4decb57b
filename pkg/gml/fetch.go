package gml

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Fetcher opens the documents that remote xlink:href references point
// into. location is the part of the href before '#', already resolved
// against the location of the referencing document.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// FileFetcher reads documents from the local file system. Relative
// locations are taken relative to Dir.
type FileFetcher struct {
	Dir string
}

var _ Fetcher = FileFetcher{}

func (f FileFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(location, "file://")
	if !filepath.IsAbs(p) && f.Dir != "" {
		p = filepath.Join(f.Dir, p)
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "file fetcher")
	}
	return file, nil
}

// HTTPFetcher reads documents with GET requests. Relative locations are
// resolved against Base.
type HTTPFetcher struct {
	Client *http.Client // nil uses http.DefaultClient
	Base   string
}

var _ Fetcher = HTTPFetcher{}

func (h HTTPFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	dest := location
	if h.Base != "" {
		dest = resolveLocation(h.Base, location)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dest, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error constructing request GET %q", dest)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error executing request GET %q", dest)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Errorf("error response from server: %s for %q", resp.Status, dest)
	}
	return resp.Body, nil
}

// resolveLocation resolves a reference location against the location of the
// document that contains it. URLs resolve as URLs; anything else is treated
// as a file path relative to the directory of base.
func resolveLocation(base, location string) string {
	if base == "" || location == "" {
		return location
	}
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		return location
	}
	if filepath.IsAbs(location) {
		return location
	}
	if b, err := url.Parse(base); err == nil && (b.Scheme == "http" || b.Scheme == "https") {
		ref, err := url.Parse(location)
		if err != nil {
			return location
		}
		return b.ResolveReference(ref).String()
	}
	return filepath.Join(filepath.Dir(strings.TrimPrefix(base, "file://")), location)
}
