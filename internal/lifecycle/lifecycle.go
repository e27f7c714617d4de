// Package lifecycle drives the worker through its two externally triggered
// transitions: install, which atomically precaches the static store, and
// activate, which garbage-collects outdated store generations and claims the
// live traffic. Both transitions are idempotent for an unchanged version tag.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/config"
	"github.com/UtsavBalar1231/website/internal/upstream"
	"github.com/UtsavBalar1231/website/metrics"
)

// State describes how far the worker has progressed.
type State int

const (
	// StateNew means no install has succeeded yet.
	StateNew State = iota

	// StateInstalled means the static store is fully precached but an
	// older generation still owns the traffic.
	StateInstalled

	// StateActive means this generation owns the traffic and outdated
	// stores are gone.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "installed"
	case StateActive:
		return "active"
	default:
		return "new"
	}
}

// Controller owns cache store creation and deletion. Nothing else in the
// worker ever deletes a store.
type Controller struct {
	cfg      config.Cache
	registry *cachestore.Registry
	client   *upstream.Client

	// claim routes live traffic to this generation. Invoked exactly once,
	// during activation.
	claim func()

	mu    sync.Mutex
	state State
}

// NewController builds a Controller. claim may be nil when there is no
// traffic to hand over (tests, tooling).
func NewController(cfg config.Cache, registry *cachestore.Registry, client *upstream.Client, claim func()) *Controller {
	if claim == nil {
		claim = func() {}
	}

	return &Controller{
		cfg:      cfg,
		registry: registry,
		client:   client,
		claim:    claim,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Version returns the current static-store version identifier, as reported
// over the control channel.
func (c *Controller) Version() string {
	return c.cfg.StaticStoreName()
}

// Install opens the static store for the current version tag and performs an
// all-or-nothing bulk precache of the configured asset list. If any single
// asset fails to fetch, nothing is persisted and the error propagates: a
// failed install must leave the previous generation in control.
func (c *Controller) Install(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNew {
		return nil
	}

	started := time.Now()

	entries, err := c.precacheAll(ctx)
	if err != nil {
		metrics.InstallAttempts.WithLabelValues("failure").Inc()
		return fmt.Errorf("install %s: %w", c.cfg.StaticStoreName(), err)
	}

	if err := c.registry.PutAll(c.cfg.StaticStoreName(), entries); err != nil {
		metrics.InstallAttempts.WithLabelValues("failure").Inc()
		return fmt.Errorf("install %s: %w", c.cfg.StaticStoreName(), err)
	}

	// the runtime store starts empty but must exist for this generation
	if _, err := c.registry.Open(c.cfg.RuntimeStoreName()); err != nil {
		metrics.InstallAttempts.WithLabelValues("failure").Inc()
		return fmt.Errorf("install %s: %w", c.cfg.RuntimeStoreName(), err)
	}

	metrics.InstallAttempts.WithLabelValues("success").Inc()
	metrics.PrecacheDuration.Set(time.Since(started).Seconds())

	c.state = StateInstalled

	log.WithFields(log.Fields{
		"store":    c.cfg.StaticStoreName(),
		"entries":  len(entries),
		"duration": time.Since(started),
	}).Info("precache complete")

	return nil
}

func (c *Controller) precacheAll(ctx context.Context) (map[string]*cachestore.Snapshot, error) {
	var mu sync.Mutex
	entries := make(map[string]*cachestore.Snapshot, len(c.cfg.PrecachePaths))

	g, ctx := errgroup.WithContext(ctx)

	for _, path := range c.cfg.PrecachePaths {
		path := path

		g.Go(func() error {
			snapshot, err := c.client.FetchPath(ctx, path)
			if err != nil {
				return err
			}

			if !snapshot.Successful() {
				return fmt.Errorf("precache fetch %s: unexpected status %d", path, snapshot.StatusCode)
			}

			mu.Lock()
			entries[cachestore.KeyForPath(path)] = snapshot
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Activate deletes every store whose name is not in the current version set,
// then claims live traffic for this generation. The claim happens even when
// deletions fail: a cleanup failure must not leave the site unserved. The
// aggregated deletion errors are still returned for logging.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateNew {
		return fmt.Errorf("activate: no installed generation for %s", c.cfg.StaticStoreName())
	}

	if c.state == StateActive {
		return nil
	}

	result := c.pruneOutdatedStores()

	c.claim()
	c.state = StateActive

	log.WithField("version", c.Version()).Info("worker activated")

	return result.ErrorOrNil()
}

func (c *Controller) pruneOutdatedStores() *multierror.Error {
	var result *multierror.Error

	names, err := c.registry.Names()
	if err != nil {
		return multierror.Append(result, fmt.Errorf("activate: list stores: %w", err))
	}

	current := make(map[string]struct{})
	for _, name := range c.cfg.CurrentStoreNames() {
		current[name] = struct{}{}
	}

	for _, name := range names {
		if _, ok := current[name]; ok {
			continue
		}

		existed, err := c.registry.Delete(name)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("activate: delete store %s: %w", name, err))
			continue
		}

		if existed {
			metrics.StoresDeleted.Inc()
			log.WithField("store", name).Info("deleted outdated cache store")
		}
	}

	return result
}

// Run performs install and, unless configured to wait for a SKIP_WAITING
// message, activation. On install success the worker skips the waiting
// period by default so the new generation takes over immediately.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Install(ctx); err != nil {
		return err
	}

	if c.cfg.WaitAfterInstall {
		log.WithField("version", c.Version()).Info("installed, waiting for SKIP_WAITING")
		return nil
	}

	return c.Activate(ctx)
}

// SkipWaiting activates an installed-but-waiting generation immediately. It
// is a no-op in any other state.
func (c *Controller) SkipWaiting() {
	if c.State() != StateInstalled {
		return
	}

	if err := c.Activate(context.Background()); err != nil {
		log.WithError(err).Error("skip-waiting activation failed")
	}
}
