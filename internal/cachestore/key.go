package cachestore

import (
	"net/http"
	"net/url"
)

// Key returns the normalized identity of a request: method plus URL with any
// fragment dropped. Same-origin requests are keyed by their origin-relative
// form so identities are stable across listener addresses.
func Key(r *http.Request) string {
	u := *r.URL
	u.Fragment = ""

	if u.IsAbs() {
		return r.Method + " " + u.String()
	}

	return r.Method + " " + u.RequestURI()
}

// KeyForPath returns the identity a GET request for the given origin-relative
// path would have. Used by install-time precache and fallback lookups.
func KeyForPath(path string) string {
	u := url.URL{Path: path}

	return http.MethodGet + " " + u.RequestURI()
}
