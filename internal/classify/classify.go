// Package classify maps an incoming request to the category that selects its
// caching strategy. Classification is a pure function of method and URL plus
// the browser fetch-metadata headers; it never consults cache state.
package classify

import (
	"net/http"
	"regexp"
	"strings"
)

// Category is the result of classifying a request. Every request maps to
// exactly one category.
type Category int

const (
	// Bypass requests are never intercepted: they are passed straight to
	// the network with no caching.
	Bypass Category = iota

	// Navigation requests are top-level HTML page loads.
	Navigation

	// StaticAsset requests exactly match an entry of the precache list.
	StaticAsset

	// RuntimeAsset requests match one of the runtime patterns and are
	// cached opportunistically.
	RuntimeAsset
)

func (c Category) String() string {
	switch c {
	case Navigation:
		return "navigation"
	case StaticAsset:
		return "static"
	case RuntimeAsset:
		return "runtime"
	default:
		return "bypass"
	}
}

// Classifier holds the compiled, fixed matching rules. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	precache map[string]struct{}
	patterns []*regexp.Regexp
}

// New compiles a Classifier from the precache path list and the runtime
// pattern list.
func New(precachePaths, runtimePatterns []string) (*Classifier, error) {
	c := &Classifier{
		precache: make(map[string]struct{}, len(precachePaths)),
	}

	for _, path := range precachePaths {
		c.precache[path] = struct{}{}
	}

	for _, pattern := range runtimePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}

		c.patterns = append(c.patterns, re)
	}

	return c, nil
}

// Classify returns the category for a request.
func (c *Classifier) Classify(r *http.Request) Category {
	if r.Method != http.MethodGet {
		return Bypass
	}

	if scheme := r.URL.Scheme; scheme != "" && scheme != "http" && scheme != "https" {
		return Bypass
	}

	if isNavigation(r) {
		return Navigation
	}

	if _, ok := c.precache[r.URL.Path]; ok {
		return StaticAsset
	}

	if c.matchesRuntime(r) {
		return RuntimeAsset
	}

	return Bypass
}

func (c *Classifier) matchesRuntime(r *http.Request) bool {
	target := r.URL.String()

	for _, re := range c.patterns {
		if re.MatchString(target) || re.MatchString(r.URL.Path) {
			return true
		}
	}

	return false
}

// isNavigation reports whether the request is a top-level page load. Browsers
// send Sec-Fetch-Mode on every request; when the header is absent the Accept
// header is the only remaining signal.
func isNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}

	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
