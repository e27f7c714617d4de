package strategy

import (
	"net/http"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/internal/offline"
	"github.com/UtsavBalar1231/website/internal/upstream"
	"github.com/UtsavBalar1231/website/metrics"
)

// NetworkFirst serves navigations. Pages must reflect the latest content
// when online, so the network is tried first and successful responses are
// copied into the runtime store. On network failure the fallback chain is
// evaluated in strict order: the exact URL in any store, then the cached
// root page, then the synthesized offline document. A user never sees a raw
// network error for a navigation.
type NetworkFirst struct {
	stores Stores
	client *upstream.Client
}

func (s *NetworkFirst) Serve(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.client.Fetch(r.Context(), r)
	if err == nil {
		persist(s.stores.Runtime, r, snapshot)
		replay(w, r, snapshot)
		return
	}

	logging.LogRequest(r).WithError(err).Info("navigation fetch failed, serving from cache")

	if snapshot, merr := s.stores.MatchAnyKey(cachestore.Key(r)); merr == nil {
		replay(w, r, snapshot)
		return
	}

	if snapshot, merr := s.stores.MatchAnyKey(cachestore.KeyForPath("/")); merr == nil {
		replay(w, r, snapshot)
		return
	}

	metrics.OfflineFallbacks.Inc()
	offline.Serve(w)
}
