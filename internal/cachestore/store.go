package cachestore

import (
	"net/http"

	bolt "go.etcd.io/bbolt"

	"github.com/UtsavBalar1231/website/metrics"
)

// Store is a named, versioned key-value mapping from request identities to
// response snapshots.
type Store struct {
	reg  *Registry
	name string
}

// Name returns the version-tagged store name.
func (s *Store) Name() string {
	return s.name
}

// Match looks up the snapshot stored for a request. It returns ErrNotFound
// when no entry exists.
func (s *Store) Match(r *http.Request) (*Snapshot, error) {
	return s.MatchKey(Key(r))
}

// MatchKey looks up a snapshot by its precomputed identity key.
func (s *Store) MatchKey(key string) (*Snapshot, error) {
	role := storeRole(s.name)

	if cached, found := s.reg.hot.Get(hotKey(s.name, key)); found {
		metrics.CacheRequests.WithLabelValues(role, "hit").Inc()
		return cached.(*Snapshot), nil
	}

	var data []byte
	err := s.reg.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(s.name))
		if bucket == nil {
			return nil
		}

		if value := bucket.Get([]byte(key)); value != nil {
			data = append([]byte(nil), value...)
		}

		return nil
	})
	if err != nil {
		metrics.CacheRequests.WithLabelValues(role, "error").Inc()
		return nil, err
	}

	if data == nil {
		metrics.CacheRequests.WithLabelValues(role, "miss").Inc()
		return nil, ErrNotFound
	}

	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		metrics.CacheRequests.WithLabelValues(role, "error").Inc()
		return nil, err
	}

	metrics.CacheRequests.WithLabelValues(role, "hit").Inc()
	s.reg.hot.SetDefault(hotKey(s.name, key), snapshot)

	return snapshot, nil
}

// Put stores the snapshot under the request's identity, overwriting any
// previous entry. Concurrent writers race last-write-wins; entries are
// idempotent representations of the same resource.
func (s *Store) Put(r *http.Request, snapshot *Snapshot) error {
	return s.PutKey(Key(r), snapshot)
}

// PutKey stores the snapshot under a precomputed identity key.
func (s *Store) PutKey(key string, snapshot *Snapshot) error {
	data, err := snapshot.Encode()
	if err != nil {
		return err
	}

	created := false
	err = s.reg.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(s.name))
		if err != nil {
			return err
		}

		created = bucket.Get([]byte(key)) == nil

		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return err
	}

	if created {
		metrics.CachedEntries.WithLabelValues(storeRole(s.name)).Inc()
	}

	s.reg.hot.SetDefault(hotKey(s.name, key), snapshot)

	return nil
}

// Keys lists every identity key present in the store.
func (s *Store) Keys() ([]string, error) {
	var keys []string

	err := s.reg.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(s.name))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(key, _ []byte) error {
			keys = append(keys, string(key))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// Count returns the number of entries in the store.
func (s *Store) Count() (int, error) {
	count := 0

	err := s.reg.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(s.name))
		if bucket == nil {
			return nil
		}

		count = bucket.Stats().KeyN

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
