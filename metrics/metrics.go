package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts intercepted requests by classifier category
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "website_worker_requests_total",
		Help: "The total number of requests seen by the worker, by category",
	}, []string{"category"})

	// ServingTime measures the time it takes to resolve a request through a strategy
	ServingTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "website_worker_serving_time_seconds",
		Help:    "The time (in seconds) taken to serve an intercepted request",
		Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 10},
	})

	// CacheRequests counts cache lookups by store role and result
	CacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "website_worker_cache_requests_total",
		Help: "The number of cache store lookups, by store role and hit/miss/error",
	}, []string{"store", "result"})

	// CachedEntries reports the number of entries currently held per store role
	CachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "website_worker_cached_entries",
		Help: "The number of entries currently present in a cache store",
	}, []string{"store"})

	// Revalidations counts background refreshes of cached entries by outcome
	Revalidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "website_worker_revalidations_total",
		Help: "The number of background cache revalidations, by outcome",
	}, []string{"result"})

	// UpstreamRequests counts fetches issued against the origin by status class
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "website_worker_upstream_requests_total",
		Help: "The number of requests sent to the upstream origin, by status class",
	}, []string{"status"})

	// InstallAttempts counts worker install phases by outcome
	InstallAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "website_worker_install_attempts_total",
		Help: "The number of install (precache) attempts, by outcome",
	}, []string{"result"})

	// PrecacheDuration is the time the last successful precache took
	PrecacheDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "website_worker_precache_duration_seconds",
		Help: "The time (in seconds) the last successful precache took",
	})

	// StoresDeleted counts cache stores removed during activation cleanup
	StoresDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "website_worker_stores_deleted_total",
		Help: "The number of outdated cache stores deleted during activation",
	})

	// OfflineFallbacks counts navigations that exhausted every fallback and
	// were answered with the synthesized offline document
	OfflineFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "website_worker_offline_fallbacks_total",
		Help: "The number of navigation requests answered with the offline page",
	})

	// PushNotifications counts push payloads dispatched to subscribers
	PushNotifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "website_worker_push_notifications_total",
		Help: "The number of push notifications dispatched to subscribers",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ServingTime)
	prometheus.MustRegister(CacheRequests)
	prometheus.MustRegister(CachedEntries)
	prometheus.MustRegister(Revalidations)
	prometheus.MustRegister(UpstreamRequests)
	prometheus.MustRegister(InstallAttempts)
	prometheus.MustRegister(PrecacheDuration)
	prometheus.MustRegister(StoresDeleted)
	prometheus.MustRegister(OfflineFallbacks)
	prometheus.MustRegister(PushNotifications)
}
