package metrics

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsVectorsCanBeScraped(t *testing.T) {
	reg := prometheus.NewRegistry()

	// vectors only show up in /metrics once a label has been set/incremented,
	// so exercise each labeled collector before scraping
	reg.MustRegister(
		RequestsTotal,
		CacheRequests,
		CachedEntries,
		Revalidations,
		UpstreamRequests,
	)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	RequestsTotal.WithLabelValues("navigation").Inc()
	CacheRequests.WithLabelValues("static", "hit").Inc()
	CachedEntries.WithLabelValues("runtime").Set(3)
	Revalidations.WithLabelValues("success").Inc()
	UpstreamRequests.WithLabelValues("2xx").Inc()

	c, err := RequestsTotal.GetMetricWithLabelValues("navigation")
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(c))

	c, err = CacheRequests.GetMetricWithLabelValues("static", "hit")
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(c))

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)

	require.Len(t, metricFamilies, 5)

	res, err := http.Get(testServer.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := ioutil.ReadAll(res.Body)

	require.Contains(t, string(body), `website_worker_requests_total{category="navigation"}`)
	require.Contains(t, string(body), `website_worker_cache_requests_total{result="hit",store="static"}`)
	require.Contains(t, string(body), `website_worker_cached_entries{store="runtime"}`)
	require.Contains(t, string(body), `website_worker_revalidations_total{result="success"}`)
	require.Contains(t, string(body), `website_worker_upstream_requests_total{status="2xx"}`)
}
