package strategy

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/config"
	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/internal/upstream"
	"github.com/UtsavBalar1231/website/metrics"
)

const recentMaxEntries = 5000

// Revalidator refreshes cached entries in the background. Refreshes are
// detached from the originating request, deduplicated per URL, suppressed for
// recently refreshed entries and rate limited globally. Every failure inside
// a refresh is swallowed at this boundary.
type Revalidator struct {
	client   *upstream.Client
	limiter  *rate.Limiter
	recent   *ccache.Cache
	suppress time.Duration
	group    singleflight.Group
	wg       sync.WaitGroup
}

// NewRevalidator builds a Revalidator from the cache configuration. A
// non-positive revalidate rate disables background refreshes entirely.
func NewRevalidator(client *upstream.Client, cfg config.Cache) *Revalidator {
	rv := &Revalidator{
		client:   client,
		recent:   ccache.New(ccache.Configure().MaxSize(recentMaxEntries)),
		suppress: cfg.RevalidateSuppress,
	}

	if cfg.RevalidateRate > 0 {
		rv.limiter = rate.NewLimiter(rate.Limit(cfg.RevalidateRate), cfg.RevalidateBurst)
	}

	return rv
}

// Refresh refetches the resource named by r in a detached task and overwrites
// the store entry on success. It returns immediately; the caller's response
// is never delayed and never fails because of it.
func (rv *Revalidator) Refresh(store *cachestore.Store, r *http.Request) {
	if rv.limiter == nil {
		return
	}

	key := cachestore.Key(r)

	if item := rv.recent.Get(key); item != nil && !item.Expired() {
		metrics.Revalidations.WithLabelValues("suppressed").Inc()
		return
	}

	if !rv.limiter.Allow() {
		metrics.Revalidations.WithLabelValues("throttled").Inc()
		return
	}

	// detach from the request context: the client navigating away must not
	// cancel the refresh
	detached := r.Clone(context.Background())

	rv.wg.Add(1)
	go func() {
		defer rv.wg.Done()

		_, err, _ := rv.group.Do(key, func() (interface{}, error) {
			return nil, rv.refresh(store, detached, key)
		})
		if err != nil {
			metrics.Revalidations.WithLabelValues("error").Inc()
			logging.LogRequest(detached).WithError(err).Debug("background revalidation failed")
		}
	}()
}

func (rv *Revalidator) refresh(store *cachestore.Store, r *http.Request, key string) error {
	snapshot, err := rv.client.Fetch(r.Context(), r)
	if err != nil {
		return err
	}

	if !snapshot.Successful() {
		metrics.Revalidations.WithLabelValues("skipped").Inc()
		return nil
	}

	if err := store.PutKey(key, snapshot); err != nil {
		return err
	}

	rv.recent.Set(key, struct{}{}, rv.suppress)
	metrics.Revalidations.WithLabelValues("success").Inc()

	return nil
}

// Wait blocks until every in-flight refresh has finished. Used on shutdown
// and by tests.
func (rv *Revalidator) Wait() {
	rv.wg.Wait()
}
