package cachestore

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := Open(Options{
		Path:       filepath.Join(t.TempDir(), "cache.db"),
		HotExpiry:  time.Minute,
		HotCleanup: time.Minute,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, reg.Close())
	})

	return reg
}

func testSnapshot(body string) *Snapshot {
	return &Snapshot{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func TestStorePutAndMatch(t *testing.T) {
	reg := testRegistry(t)

	store, err := reg.Open("static-v1")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/css/main.css", nil)

	_, err = store.Match(r)
	require.ErrorIs(t, err, ErrNotFound)

	want := testSnapshot("body { margin: 0 }")
	require.NoError(t, store.Put(r, want))

	got, err := store.Match(r)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, got.StatusCode)
	require.Equal(t, want.Body, got.Body)
	require.Equal(t, "text/html; charset=utf-8", got.Header.Get("Content-Type"))
}

func TestStoreMatchSurvivesColdHotLayer(t *testing.T) {
	reg := testRegistry(t)

	store, err := reg.Open("static-v1")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Put(r, testSnapshot("<html>home</html>")))

	// drop the hot layer so the next match has to hit bolt
	reg.hot.Flush()

	got, err := store.Match(r)
	require.NoError(t, err)
	require.Equal(t, []byte("<html>home</html>"), got.Body)
}

func TestRegistryNamesAndDelete(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Open("static-v0")
	require.NoError(t, err)
	_, err = reg.Open("runtime-v1")
	require.NoError(t, err)

	names, err := reg.Names()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"static-v0", "runtime-v1"}, names)

	existed, err := reg.Delete("static-v0")
	require.NoError(t, err)
	require.True(t, existed)

	existed, err = reg.Delete("static-v0")
	require.NoError(t, err)
	require.False(t, existed)

	names, err = reg.Names()
	require.NoError(t, err)
	require.Equal(t, []string{"runtime-v1"}, names)
}

func TestRegistryDeletePurgesHotLayer(t *testing.T) {
	reg := testRegistry(t)

	store, err := reg.Open("static-v0")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Put(r, testSnapshot("stale generation")))

	_, err = reg.Delete("static-v0")
	require.NoError(t, err)

	// reopening the same name must not resurrect the entry from memory
	store, err = reg.Open("static-v0")
	require.NoError(t, err)

	_, err = store.Match(r)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryPutAllIsAtomic(t *testing.T) {
	reg := testRegistry(t)

	entries := map[string]*Snapshot{
		KeyForPath("/"):             testSnapshot("home"),
		KeyForPath("/css/main.css"): testSnapshot("css"),
	}
	require.NoError(t, reg.PutAll("static-v1", entries))

	store, err := reg.Open("static-v1")
	require.NoError(t, err)

	keys, err := store.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"GET /", "GET /css/main.css"}, keys)

	count, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestKeyNormalization(t *testing.T) {
	tests := map[string]struct {
		target string
		want   string
	}{
		"root":           {target: "/", want: "GET /"},
		"path_and_query": {target: "/search?q=go", want: "GET /search?q=go"},
		"absolute_url":   {target: "https://fonts.gstatic.com/s/firacode.woff2", want: "GET https://fonts.gstatic.com/s/firacode.woff2"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			require.Equal(t, tt.want, Key(r))
		})
	}

	require.Equal(t, "GET /", KeyForPath("/"))
	require.Equal(t, "GET /about/", KeyForPath("/about/"))
}
