package gml

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const roadsDoc = `<app:Roads xmlns:app="http://example.com/app" xmlns:gml="http://www.opengis.net/gml/3.2">
  <app:Road><gml:LineString gml:id="r1"><gml:posList>0 0 10 0</gml:posList></gml:LineString></app:Road>
  <app:Road><gml:LineString gml:id="r2"><gml:posList>10 0 10 10</gml:posList></gml:LineString></app:Road>
</app:Roads>`

const networkBody = `<gml:MultiCurve gml:id="net">
  <gml:curveMember xlink:href="roads.gml#r1"/>
  <gml:curveMember xlink:href="roads.gml#r2"/>
</gml:MultiCurve>`

func TestResolveRemoteRefsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roads.gml"), []byte(roadsDoc), 0o644))
	networkPath := filepath.Join(dir, "network.gml")
	require.NoError(t, os.WriteFile(networkPath, []byte(featureDoc(GML32, networkBody)), 0o644))

	doc, err := DecodeFile(networkPath, GML32, DefaultDecodeOptions())
	require.NoError(t, err)
	require.Len(t, doc.Context().RemoteRefs(), 2)

	require.NoError(t, doc.ResolveRemoteRefs(context.Background(), FileFetcher{}))
	require.Empty(t, doc.Context().RemoteRefs())

	env, ok := Bounds(doc.Geometries[0])
	require.True(t, ok)
	require.Equal(t, XY(0, 0), env.Min)
	require.Equal(t, XY(10, 10), env.Max)
}

func TestResolveRemoteRefsMissingFragment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roads.gml"), []byte(roadsDoc), 0o644))

	dec, err := NewDecoder(GML32, DefaultDecodeOptions())
	require.NoError(t, err)
	doc, err := dec.DecodeDocument(strings.NewReader(featureDoc(GML32,
		`<gml:MultiCurve><gml:curveMember xlink:href="roads.gml#r9"/></gml:MultiCurve>`)))
	require.NoError(t, err)

	err = doc.ResolveRemoteRefs(context.Background(), FileFetcher{Dir: dir})
	var unresolved *ErrUnresolvedReferences
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	require.Equal(t, []string{"roads.gml#r9"}, unresolved.IDs)
}

func TestResolveRemoteRefsHTTP(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path != "/data/roads.gml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(roadsDoc))
	}))
	defer srv.Close()

	cache := NewDocumentCache(0)
	opts := DefaultDecodeOptions()
	opts.Cache = cache

	for i := 0; i < 2; i++ {
		dec, err := NewDecoder(GML32, opts)
		require.NoError(t, err)
		doc, err := dec.DecodeDocument(strings.NewReader(featureDoc(GML32, networkBody)))
		require.NoError(t, err)
		doc.Location = srv.URL + "/data/network.gml"

		require.NoError(t, doc.ResolveRemoteRefs(context.Background(), HTTPFetcher{Client: srv.Client()}))
		require.Empty(t, doc.Context().RemoteRefs())
	}

	require.EqualValues(t, 1, atomic.LoadInt32(&requests), "second document must come from the cache")
	require.Equal(t, 1, cache.Stats().Hits)
}

func TestHTTPFetcherStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := HTTPFetcher{Base: srv.URL + "/"}.Fetch(context.Background(), "missing.gml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestFileFetcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileFetcher{}.Fetch(ctx, "anything.gml")
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		base, location, want string
	}{
		{"", "roads.gml", "roads.gml"},
		{"data/network.gml", "roads.gml", filepath.Join("data", "roads.gml")},
		{"/srv/data/network.gml", "/abs/roads.gml", "/abs/roads.gml"},
		{"http://example.com/a/network.gml", "roads.gml", "http://example.com/a/roads.gml"},
		{"http://example.com/a/network.gml", "../b/roads.gml", "http://example.com/b/roads.gml"},
		{"data/network.gml", "http://example.com/roads.gml", "http://example.com/roads.gml"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, resolveLocation(tt.base, tt.location), "%s + %s", tt.base, tt.location)
	}
}
