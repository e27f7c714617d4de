package strategy

import (
	"errors"
	"net/http"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/httperrors"
	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/internal/upstream"
)

// CacheFirst serves precached static assets. A cache hit is returned
// immediately and refreshed in the background so precached assets stay
// eventually fresh without delaying the response. A miss falls through to
// the network; install should have guaranteed presence, so a miss plus
// network failure has no further fallback.
type CacheFirst struct {
	store       *cachestore.Store
	client      *upstream.Client
	revalidator *Revalidator
}

func (s *CacheFirst) Serve(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Match(r)
	if err == nil {
		s.revalidator.Refresh(s.store, r)
		replay(w, r, snapshot)
		return
	}

	if !errors.Is(err, cachestore.ErrNotFound) {
		logging.LogRequest(r).WithError(err).Error("static store lookup failed")
	}

	snapshot, err = s.client.Fetch(r.Context(), r)
	if err != nil {
		httperrors.Serve502WithRequest(w, r, "static asset neither cached nor fetchable", err)
		return
	}

	persist(s.store, r, snapshot)
	replay(w, r, snapshot)
}
