package config

import (
	"time"

	"github.com/namsral/flag"
)

var (
	listenHTTP      MultiStringFlag
	header          MultiStringFlag
	precachePaths   MultiStringFlag
	runtimePatterns MultiStringFlag

	metricsAddress         = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	statusPath             = flag.String("status-path", "", "The url path for a status page, e.g., /@status")
	showVersion            = flag.Bool("version", false, "Show version")
	propagateCorrelationID = flag.Bool("propagate-correlation-id", true, "Reuse existing Correlation-ID from the incoming request header `X-Request-ID` if present")
	serverShutdownTimeout  = flag.Duration("server-shutdown-timeout", 30*time.Second, "Worker shutdown timeout (default: 30s)")

	upstreamOrigin  = flag.String("upstream-origin", "http://127.0.0.1:1111", "The origin server the worker fronts")
	upstreamTimeout = flag.Duration("upstream-timeout", 10*time.Second, "Network fetch timeout per request (default: 10s)")

	cacheVersion       = flag.String("cache-version", "v1", "The version tag naming the current cache store generation")
	cacheDBPath        = flag.String("cache-db", "worker-cache.db", "The bolt database file holding the cache stores")
	hotCacheExpiry     = flag.Duration("hot-cache-expiry", 10*time.Minute, "The maximum time an entry is kept in the in-memory hot layer")
	hotCacheCleanup    = flag.Duration("hot-cache-cleanup", time.Minute, "The interval at which expired hot layer entries are removed")
	revalidateRate     = flag.Float64("revalidate-rate", 10.0, "Background revalidation fetches per second, 0 disables revalidation")
	revalidateBurst    = flag.Int("revalidate-burst", 20, "Maximum burst of background revalidation fetches")
	revalidateSuppress = flag.Duration("revalidate-suppress", 10*time.Second, "How long a refreshed entry is exempt from further revalidation")
	waitAfterInstall   = flag.Bool("wait-after-install", false, "Hold activation of a new cache generation until a SKIP_WAITING message")

	logFormat  = flag.String("log-format", "json", "The log output format: 'text' or 'json'")
	logVerbose = flag.Bool("log-verbose", false, "Verbose logging")
)

// defaultPrecachePaths must each be fetchable from the origin during install;
// a single failure fails the whole install.
var defaultPrecachePaths = []string{
	"/",
	"/about/",
	"/posts/",
	"/css/main.css",
	"/js/bundle.js",
	"/manifest.json",
	"/favicon.ico",
	"/icons/icon-192x192.png",
	"/icons/icon-512x512.png",
}

var defaultRuntimePatterns = []string{
	`^https?://fonts\.googleapis\.com/`,
	`^https?://fonts\.gstatic\.com/`,
	`\.(png|jpe?g|gif|webp|svg|ico)$`,
	`\.(woff2?|ttf|otf|eot)$`,
	`\.(js|mjs)$`,
	`\.css$`,
}

func initFlags() {
	flag.Var(&listenHTTP, "listen-http", "The address(es) to listen on for HTTP requests")
	flag.Var(&header, "header", "The additional http header(s) that should be send to the client")
	flag.Var(&precachePaths, "precache-path", "URL path(s) precached into the static store during install")
	flag.Var(&runtimePatterns, "runtime-pattern", "Regular expression(s) identifying runtime-cacheable requests")

	// read from -config=/path/to/config file, CONFIG environment variable or
	// command line flags
	flag.String(flag.DefaultConfigFlagname, "", "path to config file")

	flag.Parse()
}

func precacheDefaults(paths []string) []string {
	if len(paths) == 0 {
		return defaultPrecachePaths
	}

	return paths
}

func runtimeDefaults(patterns []string) []string {
	if len(patterns) == 0 {
		return defaultRuntimePatterns
	}

	return patterns
}
