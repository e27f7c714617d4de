package config

import (
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config stores all the config options relevant to the caching worker.
type Config struct {
	General  General
	Cache    Cache
	Upstream Upstream
	Log      Log

	// ListenHTTPStrings contains the raw strings passed for listen-http. It
	// is used by appMain() to create listeners.
	ListenHTTPStrings MultiStringFlag
}

// General groups settings that can not be categorized under other heads.
type General struct {
	MetricsAddress         string
	StatusPath             string
	CustomHeaders          []string
	ShowVersion            bool
	PropagateCorrelationID bool
	ServerShutdownTimeout  time.Duration
}

// Cache groups settings controlling the versioned cache stores and the
// caching strategies.
type Cache struct {
	// VersionTag is the suffix shared by the current store generation. It
	// must be bumped whenever the precache list or caching policy changes.
	VersionTag string

	// DBPath is the bolt database file holding every cache store.
	DBPath string

	// PrecachePaths is the fixed list of URL paths that must be present in
	// the static store after a successful install.
	PrecachePaths []string

	// RuntimePatterns is the fixed list of regular expressions identifying
	// requests eligible for stale-while-revalidate treatment.
	RuntimePatterns []string

	HotCacheExpiry  time.Duration
	HotCacheCleanup time.Duration

	RevalidateRate     float64
	RevalidateBurst    int
	RevalidateSuppress time.Duration

	// WaitAfterInstall holds activation of a freshly installed generation
	// until a SKIP_WAITING message arrives.
	WaitAfterInstall bool
}

// StaticStoreName returns the version-tagged name of the precache store.
func (c Cache) StaticStoreName() string {
	return "static-" + c.VersionTag
}

// RuntimeStoreName returns the version-tagged name of the opportunistic store.
func (c Cache) RuntimeStoreName() string {
	return "runtime-" + c.VersionTag
}

// CurrentStoreNames returns the complete current version set. Any store not
// named here is deleted on activation.
func (c Cache) CurrentStoreNames() []string {
	return []string{c.StaticStoreName(), c.RuntimeStoreName()}
}

// Upstream groups settings describing the origin the worker fronts.
type Upstream struct {
	Origin  *url.URL
	Timeout time.Duration
}

// Log groups settings related to configuring the logging system.
type Log struct {
	Format  string
	Verbose bool
}

func loadConfig() (*Config, error) {
	config := &Config{
		General: General{
			MetricsAddress:         *metricsAddress,
			StatusPath:             *statusPath,
			CustomHeaders:          header.Split(),
			ShowVersion:            *showVersion,
			PropagateCorrelationID: *propagateCorrelationID,
			ServerShutdownTimeout:  *serverShutdownTimeout,
		},
		Cache: Cache{
			VersionTag:         *cacheVersion,
			DBPath:             *cacheDBPath,
			PrecachePaths:      precacheDefaults(precachePaths.Split()),
			RuntimePatterns:    runtimeDefaults(runtimePatterns.Split()),
			HotCacheExpiry:     *hotCacheExpiry,
			HotCacheCleanup:    *hotCacheCleanup,
			RevalidateRate:     *revalidateRate,
			RevalidateBurst:    *revalidateBurst,
			RevalidateSuppress: *revalidateSuppress,
			WaitAfterInstall:   *waitAfterInstall,
		},
		Upstream: Upstream{
			Timeout: *upstreamTimeout,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},

		ListenHTTPStrings: listenHTTP,
	}

	origin, err := url.Parse(*upstreamOrigin)
	if err != nil {
		return nil, err
	}
	config.Upstream.Origin = origin

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LogConfig logs the effective worker configuration at startup.
func LogConfig(config *Config) {
	log.WithFields(log.Fields{
		"listen-http":         config.ListenHTTPStrings.String(),
		"metrics-address":     config.General.MetricsAddress,
		"status-path":         config.General.StatusPath,
		"upstream-origin":     config.Upstream.Origin.String(),
		"upstream-timeout":    config.Upstream.Timeout,
		"cache-version":       config.Cache.VersionTag,
		"cache-db":            config.Cache.DBPath,
		"precache-paths":      len(config.Cache.PrecachePaths),
		"runtime-patterns":    len(config.Cache.RuntimePatterns),
		"wait-after-install":  config.Cache.WaitAfterInstall,
		"revalidate-rate":     config.Cache.RevalidateRate,
		"revalidate-suppress": config.Cache.RevalidateSuppress,
		"log-format":          config.Log.Format,
	}).Debug("Starting worker with configuration")
}

// LoadConfig parses configuration settings passed as command line arguments,
// environment variables or via config file, and populates a Config object
// with those values.
func LoadConfig() (*Config, error) {
	initFlags()

	return loadConfig()
}
