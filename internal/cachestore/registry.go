// Package cachestore implements the named, versioned cache stores the worker
// persists response snapshots in. It is the only package that touches the
// underlying storage mechanism: a single bolt database with one bucket per
// store, fronted by an in-memory hot layer to keep match latency low.
package cachestore

import (
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	bolt "go.etcd.io/bbolt"

	"github.com/UtsavBalar1231/website/metrics"
)

// ErrNotFound is returned by Store.Match when no entry exists for a request.
// It is a lookup result, not a failure; fallback logic consumes it.
var ErrNotFound = errors.New("cachestore: entry not found")

const hotKeySeparator = "\x00"

// Options configures a Registry.
type Options struct {
	// Path is the bolt database file. It is created if missing.
	Path string

	// HotExpiry and HotCleanup tune the in-memory layer in front of bolt.
	HotExpiry  time.Duration
	HotCleanup time.Duration
}

// Registry gives access to the named cache stores. It is safe for concurrent
// use by multiple goroutines.
type Registry struct {
	db  *bolt.DB
	hot *gocache.Cache
}

// Open initializes or opens a Registry at the given path.
func Open(opts Options) (*Registry, error) {
	db, err := bolt.Open(opts.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	return &Registry{
		db:  db,
		hot: gocache.New(opts.HotExpiry, opts.HotCleanup),
	}, nil
}

// Close closes the underlying database.
func (reg *Registry) Close() error {
	if reg == nil || reg.db == nil {
		return nil
	}

	return reg.db.Close()
}

// Open returns the named store, creating it if it does not exist yet.
func (reg *Registry) Open(name string) (*Store, error) {
	err := reg.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Store{reg: reg, name: name}, nil
}

// Names lists every store currently present, in bucket order.
func (reg *Registry) Names() ([]string, error) {
	var names []string

	err := reg.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// Delete removes the named store and every entry in it. It reports whether
// the store existed.
func (reg *Registry) Delete(name string) (bool, error) {
	existed := true

	err := reg.db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(name))
	})
	if errors.Is(err, bolt.ErrBucketNotFound) {
		existed = false
		err = nil
	}
	if err != nil {
		return false, err
	}

	reg.dropHotStore(name)
	metrics.CachedEntries.DeleteLabelValues(storeRole(name))

	return existed, nil
}

// PutAll writes a set of entries into the named store in a single
// transaction, creating the store if needed. Either every entry is persisted
// or none is.
func (reg *Registry) PutAll(name string, entries map[string]*Snapshot) error {
	encoded := make(map[string][]byte, len(entries))
	for key, snapshot := range entries {
		data, err := snapshot.Encode()
		if err != nil {
			return err
		}
		encoded[key] = data
	}

	err := reg.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}

		for key, data := range encoded {
			if err := bucket.Put([]byte(key), data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for key, snapshot := range entries {
		reg.hot.SetDefault(hotKey(name, key), snapshot)
	}

	reg.refreshEntryCount(name)

	return nil
}

func (reg *Registry) refreshEntryCount(name string) {
	store := Store{reg: reg, name: name}

	if count, err := store.Count(); err == nil {
		metrics.CachedEntries.WithLabelValues(storeRole(name)).Set(float64(count))
	}
}

func (reg *Registry) dropHotStore(name string) {
	prefix := name + hotKeySeparator

	for key := range reg.hot.Items() {
		if strings.HasPrefix(key, prefix) {
			reg.hot.Delete(key)
		}
	}
}

func hotKey(name, key string) string {
	return name + hotKeySeparator + key
}

// storeRole strips the version tag from a store name, e.g. "static-v1"
// becomes "static". Used as a stable metric label across generations.
func storeRole(name string) string {
	if i := strings.Index(name, "-"); i > 0 {
		return name[:i]
	}

	return name
}
