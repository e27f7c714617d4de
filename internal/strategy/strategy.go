// Package strategy implements the three caching strategies the worker
// dispatches intercepted requests to: cache-first for precached assets,
// network-first with a fallback chain for navigations, and
// stale-while-revalidate for runtime assets.
package strategy

import (
	"net/http"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/classify"
	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/internal/upstream"
)

// Strategy resolves an intercepted request through the cache stores and/or
// the network. Implementations hold no per-request state.
type Strategy interface {
	Serve(w http.ResponseWriter, r *http.Request)
}

// Stores groups the current store generation. Lookup order for fallbacks is
// static first, then runtime.
type Stores struct {
	Static  *cachestore.Store
	Runtime *cachestore.Store
}

// MatchAnyKey looks the key up in every current store and returns the first
// hit.
func (s Stores) MatchAnyKey(key string) (*cachestore.Snapshot, error) {
	snapshot, err := s.Static.MatchKey(key)
	if err == nil {
		return snapshot, nil
	}

	return s.Runtime.MatchKey(key)
}

// NewTable builds the category dispatch table. Bypass has no entry: bypassed
// requests are never routed through a strategy.
func NewTable(stores Stores, client *upstream.Client, revalidator *Revalidator) map[classify.Category]Strategy {
	return map[classify.Category]Strategy{
		classify.StaticAsset:  &CacheFirst{store: stores.Static, client: client, revalidator: revalidator},
		classify.Navigation:   &NetworkFirst{stores: stores, client: client},
		classify.RuntimeAsset: &StaleWhileRevalidate{store: stores.Runtime, client: client, revalidator: revalidator},
	}
}

// persist writes a snapshot to a store, swallowing storage failures: a failed
// cache write must never fail the response being delivered.
func persist(store *cachestore.Store, r *http.Request, snapshot *cachestore.Snapshot) {
	if !snapshot.Successful() {
		return
	}

	if err := store.Put(r, snapshot); err != nil {
		logging.LogRequest(r).WithError(err).Warn("could not persist response snapshot")
	}
}

// replay writes a snapshot to the client, swallowing write failures from
// clients that went away mid-response.
func replay(w http.ResponseWriter, r *http.Request, snapshot *cachestore.Snapshot) {
	if err := snapshot.WriteTo(w); err != nil {
		logging.LogRequest(r).WithError(err).Debug("client went away while writing response")
	}
}
