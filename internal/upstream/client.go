// Package upstream is the network side of the worker: it fetches resources
// from the origin the worker fronts (or from a third-party host for
// cross-origin runtime assets) and captures them as snapshots.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gitlab.com/gitlab-org/labkit/correlation"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/config"
	"github.com/UtsavBalar1231/website/metrics"
)

// headers copied from the intercepted request onto the origin fetch.
var forwardedHeaders = []string{
	"Accept",
	"Accept-Language",
	"User-Agent",
	"If-None-Match",
	"If-Modified-Since",
}

// Client fetches resources over the network on behalf of the strategies.
type Client struct {
	origin     *url.URL
	httpClient *http.Client
}

// NewClient returns a Client fetching from the configured origin.
func NewClient(cfg config.Upstream) *Client {
	return &Client{
		origin: cfg.Origin,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				// overrides the DefaultMaxIdleConnsPerHost = 2
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch issues a GET for the resource the intercepted request names and
// returns a snapshot of the full response. Origin-relative requests are
// resolved against the configured origin; absolute URLs (external hosts such
// as font CDNs) are fetched directly.
func (c *Client) Fetch(ctx context.Context, r *http.Request) (*cachestore.Snapshot, error) {
	target := c.target(r.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	for _, h := range forwardedHeaders {
		if value := r.Header.Get(h); value != "" {
			req.Header.Set(h, value)
		}
	}

	return c.do(req)
}

// FetchPath issues a GET for an origin-relative path with no originating
// request, as install-time precache does.
func (c *Client) FetchPath(ctx context.Context, path string) (*cachestore.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target(&url.URL{Path: path}), nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*cachestore.Snapshot, error) {
	if id := correlation.ExtractFromContext(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upstream fetch %s: %w", req.URL, err)
	}

	metrics.UpstreamRequests.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	return cachestore.FromResponse(resp)
}

func (c *Client) target(u *url.URL) string {
	if u.IsAbs() && u.Host != c.origin.Host {
		return u.String()
	}

	resolved := *c.origin
	resolved.Path = u.Path
	resolved.RawQuery = u.RawQuery

	return resolved.String()
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
