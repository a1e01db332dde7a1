// Package lru wraps ccache with expiry and cache effectiveness metrics.
package lru

import (
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// itemsToPruneDiv controls how many items are pruned when the cache is
// full, 1/16 of the maximum.
const itemsToPruneDiv = 16

// Cache is a bounded LRU keyed by string.
type Cache struct {
	op                  string
	duration            time.Duration
	cache               *ccache.Cache
	metricCachedEntries *prometheus.GaugeVec
	metricCacheRequests *prometheus.CounterVec
}

// New creates an LRU cache holding at most maxEntries items for at most
// duration each. op labels the cache in the exported metrics.
func New(op string, maxEntries int64, duration time.Duration, cachedEntriesMetric *prometheus.GaugeVec, cacheRequestsMetric *prometheus.CounterVec) *Cache {
	configuration := ccache.Configure()
	configuration.MaxSize(maxEntries)
	configuration.ItemsToPrune(uint32(maxEntries) / itemsToPruneDiv)
	configuration.OnDelete(func(*ccache.Item) {
		cachedEntriesMetric.WithLabelValues(op).Dec()
	})

	return &Cache{
		op:                  op,
		cache:               ccache.New(configuration),
		duration:            duration,
		metricCachedEntries: cachedEntriesMetric,
		metricCacheRequests: cacheRequestsMetric,
	}
}

// FindOrFetch returns the cached value for key if present and fresh,
// otherwise it calls fetchFn and caches the result.
func (c *Cache) FindOrFetch(key string, fetchFn func() (interface{}, error)) (interface{}, error) {
	item := c.cache.Get(key)

	if item != nil && !item.Expired() {
		c.metricCacheRequests.WithLabelValues(c.op, "hit").Inc()
		return item.Value(), nil
	}

	value, err := fetchFn()
	if err != nil {
		c.metricCacheRequests.WithLabelValues(c.op, "error").Inc()
		return nil, err
	}

	c.metricCacheRequests.WithLabelValues(c.op, "miss").Inc()
	c.metricCachedEntries.WithLabelValues(c.op).Inc()

	c.cache.Set(key, value, c.duration)

	return value, nil
}
