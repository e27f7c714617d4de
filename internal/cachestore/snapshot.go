package cachestore

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Snapshot is a full HTTP response snapshot: status, headers and body. It is
// the value type stored under a request identity.
type Snapshot struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// hop-by-hop headers are connection-scoped and never snapshotted.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// FromResponse drains the response body and captures a snapshot. The body is
// closed; the caller must not reuse the response afterwards.
func FromResponse(resp *http.Response) (*Snapshot, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	header := resp.Header.Clone()
	for _, h := range hopHeaders {
		header.Del(h)
	}

	return &Snapshot{
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       body,
	}, nil
}

// Successful reports whether the snapshot may be persisted. Only successful
// statuses are ever written to a store; redirects and errors are returned to
// the caller but never cached.
func (s *Snapshot) Successful() bool {
	return s.StatusCode >= http.StatusOK && s.StatusCode < http.StatusMultipleChoices
}

// WriteTo replays the snapshot onto a ResponseWriter.
func (s *Snapshot) WriteTo(w http.ResponseWriter) error {
	for key, values := range s.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.WriteHeader(s.StatusCode)

	_, err := w.Write(s.Body)
	return err
}

// Encode serializes the snapshot in HTTP/1.1 wire format. The wire format
// round-trips status line, headers and body exactly and keeps stored entries
// inspectable with standard tooling.
func (s *Snapshot) Encode() ([]byte, error) {
	header := s.Header
	if header == nil {
		header = http.Header{}
	}

	resp := &http.Response{
		Status:        fmt.Sprintf("%d %s", s.StatusCode, http.StatusText(s.StatusCode)),
		StatusCode:    s.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(s.Body)),
		ContentLength: int64(len(s.Body)),
	}

	var buf bytes.Buffer
	if err := resp.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot previously produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
	if err != nil {
		return nil, err
	}

	return FromResponse(resp)
}
