// Package metrics exports cache and fetch events as Prometheus metrics.
package metrics

import (
	"strings"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "swr"

// Lookup results.
const (
	ResultHit   = "hit"
	ResultStale = "stale"
	ResultMiss  = "miss"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector implements ports.CacheMetrics on a private Prometheus registry.
// Keys are reduced to their resource (the first key segment) to bound label
// cardinality.
type Collector struct {
	registry *prometheus.Registry

	Lookups       *prometheus.CounterVec
	Expirations   *prometheus.CounterVec
	Evictions     *prometheus.CounterVec
	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Retries       *prometheus.CounterVec
	Discarded     *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache reads by resource and result (hit, stale, miss).",
		}, []string{"resource", "result"}),
		Expirations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_expirations_total",
			Help:      "Entries dropped on read past their hard expiry.",
		}, []string{"resource"}),
		Evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries removed by invalidation, by reason.",
		}, []string{"reason"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetches_total",
			Help:      "Settled shared fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of shared fetches including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetch_retries_total",
			Help:      "Retries scheduled after a failed attempt.",
		}, []string{"resource"}),
		Discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetch_results_discarded_total",
			Help:      "Fetch results dropped because newer data or an invalidation superseded them.",
		}, []string{"resource"}),
	}

	c.registry.MustRegister(
		c.Lookups,
		c.Expirations,
		c.Evictions,
		c.Fetches,
		c.FetchDuration,
		c.Retries,
		c.Discarded,
	)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Hit implements ports.CacheMetrics.
func (c *Collector) Hit(key string) {
	c.Lookups.WithLabelValues(Resource(key), ResultHit).Inc()
}

// StaleServed implements ports.CacheMetrics.
func (c *Collector) StaleServed(key string) {
	c.Lookups.WithLabelValues(Resource(key), ResultStale).Inc()
}

// Miss implements ports.CacheMetrics.
func (c *Collector) Miss(key string) {
	c.Lookups.WithLabelValues(Resource(key), ResultMiss).Inc()
}

// Expired implements ports.CacheMetrics.
func (c *Collector) Expired(key string) {
	c.Expirations.WithLabelValues(Resource(key)).Inc()
}

// Evicted implements ports.CacheMetrics.
func (c *Collector) Evicted(reason string, n int) {
	if n <= 0 {
		return
	}
	c.Evictions.WithLabelValues(reason).Add(float64(n))
}

// FetchCompleted implements ports.CacheMetrics.
func (c *Collector) FetchCompleted(key string, d time.Duration, err error) {
	resource := Resource(key)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.Fetches.WithLabelValues(resource, outcome).Inc()
	c.FetchDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// RetryScheduled implements ports.CacheMetrics.
func (c *Collector) RetryScheduled(key string, _ int, _ time.Duration) {
	c.Retries.WithLabelValues(Resource(key)).Inc()
}

// GenerationDiscarded implements ports.CacheMetrics.
func (c *Collector) GenerationDiscarded(key string) {
	c.Discarded.WithLabelValues(Resource(key)).Inc()
}

// Resource returns the first segment of key, "unknown" for an empty key.
func Resource(key string) string {
	resource, _, _ := strings.Cut(key, domain.KeySeparator)
	if resource == "" {
		return "unknown"
	}
	return resource
}
