// Package cache implements the process wide counter cache that instruments
// fetches against the remote data API, and the diagnostic report over it.
//
// The counters are best effort: they are read-mostly, carry no locking
// guarantee beyond what the backing storage gives and lost updates are
// acceptable. Entries expire with the storage's TTL policy; there is no
// explicit teardown.
package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/storage"
)

// Key prefixes of the counted metrics.
const (
	// MetricTimes counts wall-clock timed fetches.
	MetricTimes = "times"
	// MetricUses counts logical uses of a fetched resource.
	MetricUses = "uses"

	// OutcomeHit marks a fetch answered from cache.
	OutcomeHit = "HIT"
	// OutcomeMiss marks a fetch that had to go to the remote service.
	OutcomeMiss = "MISS"
)

// Store is the injected counter store. Counters are non-negative integers;
// a missing counter reads as zero.
type Store interface {
	// Get returns the counter value, zero if the key is unknown.
	Get(key string) (int, error)
	// Increment adds delta to the counter, creating it at zero.
	Increment(key string, delta int) error
	// Keys returns the tracked resource keys stored under listKey,
	// an empty slice if the list is absent.
	Keys(listKey string) ([]string, error)
	// Track appends item to the tracked key list if not yet present.
	Track(listKey, item string) error
}

// CounterKey builds the storage key of one counter,
// e.g. "times_HIT_classes.ProductVersions".
func CounterKey(metric, outcome, item string) string {
	return metric + "_" + outcome + "_" + item
}

// counterStore implements Store on top of a fiber storage backend.
type counterStore struct {
	storage storage.Storage
	ttl     time.Duration
}

// New creates a counter store over the given storage backend. Entries live
// for ttl; zero means no expiry.
func New(st storage.Storage, ttl time.Duration) Store {
	if st == nil {
		panic("storage is nil")
	}

	return &counterStore{storage: st, ttl: ttl}
}

func (c *counterStore) Get(key string) (int, error) {
	raw, err := c.storage.Get(key)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	if len(raw) == 0 {
		return 0, nil
	}

	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	return n, nil
}

func (c *counterStore) Increment(key string, delta int) error {
	// read-modify-write; a lost update under concurrency is acceptable
	// for diagnostic counters
	n, err := c.Get(key)
	if err != nil {
		return err
	}

	return c.storage.Set(key, []byte(strconv.Itoa(n+delta)), c.ttl) //nolint:wrapcheck
}

func (c *counterStore) Keys(listKey string) ([]string, error) {
	raw, err := c.storage.Get(listKey)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if len(raw) == 0 {
		return []string{}, nil
	}

	return splitList(string(raw)), nil
}

func (c *counterStore) Track(listKey, item string) error {
	keys, err := c.Keys(listKey)
	if err != nil {
		return err
	}

	for _, k := range keys {
		if k == item {
			return nil
		}
	}

	keys = append(keys, item)

	return c.storage.Set(listKey, []byte(joinList(keys)), c.ttl) //nolint:wrapcheck
}

// The tracked key list is newline separated; resource keys are URLs and
// class names which never contain newlines.
const listSeparator = "\n"

func splitList(raw string) []string {
	parts := strings.Split(raw, listSeparator)
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func joinList(keys []string) string {
	return strings.Join(keys, listSeparator)
}
