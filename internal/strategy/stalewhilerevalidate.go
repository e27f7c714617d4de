package strategy

import (
	"errors"
	"net/http"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/httperrors"
	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/internal/upstream"
)

// StaleWhileRevalidate serves runtime assets. A cache hit is returned
// immediately while a concurrent refresh overwrites the entry for next time.
// A miss awaits the network directly; a miss plus network failure propagates
// upstream as a 502 with no synthesized body.
type StaleWhileRevalidate struct {
	store       *cachestore.Store
	client      *upstream.Client
	revalidator *Revalidator
}

func (s *StaleWhileRevalidate) Serve(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Match(r)
	if err == nil {
		s.revalidator.Refresh(s.store, r)
		replay(w, r, snapshot)
		return
	}

	if !errors.Is(err, cachestore.ErrNotFound) {
		logging.LogRequest(r).WithError(err).Error("runtime store lookup failed")
	}

	snapshot, err = s.client.Fetch(r.Context(), r)
	if err != nil {
		httperrors.Serve502WithRequest(w, r, "runtime asset neither cached nor fetchable", err)
		return
	}

	persist(s.store, r, snapshot)
	replay(w, r, snapshot)
}
