// Package metriccache memoizes the aggregate objectives of service combinations
// for the duration of one optimization run.
package metriccache

import (
	"sort"
	"strings"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/catalog"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metrics"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/objectives"
)

const keySeparator = "\x1f"

// Stats reports cache usage.
type Stats struct {
	Hits         int64
	Misses       int64
	Computations int64
	Entries      int
}

// Cache is a read-through cache keyed by the sorted tuple of service ids.
// Entries never expire: the catalog snapshot it reads from is immutable.
// It is safe for concurrent use.
type Cache struct {
	store     *catalog.Store
	evaluator *objectives.Evaluator
	items     *gocache.Cache
	group     singleflight.Group

	hits         atomic.Int64
	misses       atomic.Int64
	computations atomic.Int64
}

// New returns an empty cache over the given snapshot.
func New(store *catalog.Store, evaluator *objectives.Evaluator) *Cache {
	return &Cache{
		store:     store,
		evaluator: evaluator,
		items:     gocache.New(gocache.NoExpiration, 0),
	}
}

// Key returns the cache key for a combination, independent of id order.
func Key(ids []string) string {
	return strings.Join(sortedCopy(ids), keySeparator)
}

func sortedCopy(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return sorted
}

// Get returns the objectives of the given combination, computing and storing
// them on a miss. Concurrent misses on the same key share one computation.
func (c *Cache) Get(ids []string) (framework.Objectives, error) {
	sorted := sortedCopy(ids)
	key := strings.Join(sorted, keySeparator)
	if obj, ok := c.lookup(key); ok {
		c.hits.Add(1)
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return obj, nil
	}
	c.misses.Add(1)
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A previous flight may have stored the key since the lookup above.
		if obj, ok := c.lookup(key); ok {
			return obj, nil
		}
		services, err := c.store.Resolve(sorted)
		if err != nil {
			return nil, err
		}
		c.computations.Add(1)
		obj := c.evaluator.Evaluate(services)
		c.items.Set(key, obj, gocache.NoExpiration)
		return obj, nil
	})
	if err != nil {
		return framework.Objectives{}, err
	}
	return v.(framework.Objectives), nil
}

func (c *Cache) lookup(key string) (framework.Objectives, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return framework.Objectives{}, false
	}
	return v.(framework.Objectives), true
}

// Stats returns a snapshot of the usage counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Computations: c.computations.Load(),
		Entries:      c.items.ItemCount(),
	}
}
