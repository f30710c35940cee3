/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package cache bounds how many materialized row tables are held in memory.
//
// Entries are keyed by resource uid and managed LRU: a read refreshes the
// entry, an insert past the bound evicts from the cold end. Entries never
// expire on their own; the write paths invalidate them explicitly.
package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/suparena/assetstore/storagemodels"
)

const (
	// DefaultMaxEntries bounds the cache when no size is configured.
	DefaultMaxEntries = 100

	// Disabled turns the cache into a bypass: nothing is stored and every
	// fill runs.
	Disabled = -1
)

type cacheEntry struct {
	uid   string
	table *storagemodels.RowTable
}

// Cache is a bounded LRU of materialized row tables, safe for concurrent
// use. Concurrent fills of the same resource are collapsed so the backing
// container is scanned once.
type Cache struct {
	log        *zap.Logger
	maxEntries int

	mu     sync.Mutex
	lru    *list.List
	lookup map[string]*list.Element
	epoch  uint64

	group singleflight.Group

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
}

// New creates a cache bounded to maxEntries row tables. Zero means
// DefaultMaxEntries; Disabled means bypass.
func New(log *zap.Logger, maxEntries int) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache{
		log:        log,
		maxEntries: maxEntries,
		lru:        list.New(),
		lookup:     make(map[string]*list.Element),
	}
	c.hits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "assetstore",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Row table reads served from the cache.",
	})
	c.misses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "assetstore",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Row table reads that had to fill from the datum store.",
	})
	c.evictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "assetstore",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Row tables evicted to stay within the size bound.",
	})
	c.entries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "assetstore",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Row tables currently cached.",
	})
	return c
}

// PrometheusCollectors returns the metrics tracked by this cache.
func (c *Cache) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{c.hits, c.misses, c.evictions, c.entries}
}

// Enabled reports whether the cache stores anything at all.
func (c *Cache) Enabled() bool {
	return c.maxEntries != Disabled
}

// Get returns the cached table for a resource and refreshes its recency.
func (c *Cache) Get(uid string) (*storagemodels.RowTable, bool) {
	if c.maxEntries == Disabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.lookup[uid]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).table, true
}

// Put stores the table for a resource, evicting from the cold end as
// needed to stay within the bound.
func (c *Cache) Put(uid string, table *storagemodels.RowTable) {
	if c.maxEntries == Disabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(uid, table)
}

func (c *Cache) put(uid string, table *storagemodels.RowTable) {
	if elem, ok := c.lookup[uid]; ok {
		elem.Value.(*cacheEntry).table = table
		c.lru.MoveToFront(elem)
		return
	}
	c.lookup[uid] = c.lru.PushFront(&cacheEntry{uid: uid, table: table})
	c.maintainLRU()
	c.entries.Set(float64(len(c.lookup)))
}

// maintainLRU evicts from the back of the list until the cache is within
// its bound. Must be called with mu held.
func (c *Cache) maintainLRU() {
	for c.lru.Len() > c.maxEntries {
		back := c.lru.Back()
		if back == nil {
			return
		}
		entry := back.Value.(*cacheEntry)
		c.lru.Remove(back)
		delete(c.lookup, entry.uid)
		c.evictions.Inc()
		c.log.Debug("evicted row table", zap.String("resource_uid", entry.uid))
	}
}

// GetOrFill returns the cached table for a resource, running fill on a
// miss. Concurrent callers for the same uid share one fill. A fill that
// raced an invalidation does not reinstate the entry.
func (c *Cache) GetOrFill(ctx context.Context, uid string, fill func(context.Context) (*storagemodels.RowTable, error)) (*storagemodels.RowTable, error) {
	if c.maxEntries == Disabled {
		return fill(ctx)
	}

	if table, ok := c.Get(uid); ok {
		c.hits.Inc()
		return table, nil
	}
	c.misses.Inc()

	v, err, _ := c.group.Do(uid, func() (interface{}, error) {
		if table, ok := c.Get(uid); ok {
			return table, nil
		}

		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()

		table, err := fill(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.epoch == epoch {
			c.put(uid, table)
		}
		c.mu.Unlock()
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*storagemodels.RowTable), nil
}

// Invalidate drops the entry for a resource, if any.
func (c *Cache) Invalidate(uid string) {
	if c.maxEntries == Disabled {
		return
	}

	c.mu.Lock()
	c.epoch++
	if elem, ok := c.lookup[uid]; ok {
		c.lru.Remove(elem)
		delete(c.lookup, uid)
		c.entries.Set(float64(len(c.lookup)))
	}
	c.mu.Unlock()
	c.group.Forget(uid)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c.maxEntries == Disabled {
		return
	}

	c.mu.Lock()
	c.epoch++
	c.lru.Init()
	c.lookup = make(map[string]*list.Element)
	c.entries.Set(0)
	c.mu.Unlock()
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	if c.maxEntries == Disabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lookup)
}
