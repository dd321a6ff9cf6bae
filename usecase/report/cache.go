package report

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sijagad_report_cache_hits_total",
		Help: "Upcoming report cache hits",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sijagad_report_cache_misses_total",
		Help: "Upcoming report cache misses",
	})
)

type cachedReport struct {
	text  string
	items []Item
}

// Cache holds rendered upcoming reports keyed by civil date.
type Cache struct {
	lru *expirable.LRU[string, cachedReport]
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 16
	}
	return &Cache{lru: expirable.NewLRU[string, cachedReport](size, nil, ttl)}
}

func (c *Cache) get(key string) (cachedReport, bool) {
	if c == nil {
		return cachedReport{}, false
	}
	v, ok := c.lru.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return v, true
	}
	cacheMissesTotal.Inc()
	return cachedReport{}, false
}

func (c *Cache) set(key string, v cachedReport) {
	if c == nil {
		return
	}
	c.lru.Add(key, v)
}

// Invalidate drops every cached report. Called after writes to letters.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
