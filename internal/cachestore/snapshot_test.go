package cachestore

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	snapshot := &Snapshot{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Content-Type":  []string{"text/css"},
			"Cache-Control": []string{"public, max-age=3600"},
		},
		Body: []byte("body { margin: 0 }"),
	}

	data, err := snapshot.Encode()
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)

	require.Equal(t, snapshot.StatusCode, decoded.StatusCode)
	require.Equal(t, snapshot.Body, decoded.Body)
	require.Equal(t, "text/css", decoded.Header.Get("Content-Type"))
	require.Equal(t, "public, max-age=3600", decoded.Header.Get("Cache-Control"))
}

func TestFromResponseStripsHopByHopHeaders(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Content-Type": []string{"text/html"},
			"Connection":   []string{"keep-alive"},
			"Keep-Alive":   []string{"timeout=5"},
		},
		Body: io.NopCloser(strings.NewReader("<html></html>")),
	}

	snapshot, err := FromResponse(resp)
	require.NoError(t, err)

	require.Empty(t, snapshot.Header.Get("Connection"))
	require.Empty(t, snapshot.Header.Get("Keep-Alive"))
	require.Equal(t, "text/html", snapshot.Header.Get("Content-Type"))
	require.Equal(t, []byte("<html></html>"), snapshot.Body)
}

func TestSnapshotSuccessful(t *testing.T) {
	require.True(t, (&Snapshot{StatusCode: http.StatusOK}).Successful())
	require.True(t, (&Snapshot{StatusCode: http.StatusNoContent}).Successful())
	require.False(t, (&Snapshot{StatusCode: http.StatusMovedPermanently}).Successful())
	require.False(t, (&Snapshot{StatusCode: http.StatusNotFound}).Successful())
	require.False(t, (&Snapshot{StatusCode: http.StatusBadGateway}).Successful())
}

func TestSnapshotWriteTo(t *testing.T) {
	snapshot := &Snapshot{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       []byte("<html>hi</html>"),
	}

	w := httptest.NewRecorder()
	require.NoError(t, snapshot.WriteTo(w))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html", w.Header().Get("Content-Type"))
	require.Equal(t, "<html>hi</html>", w.Body.String())
}
