// Package metric exports searcher measurements to Prometheus.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements scanngo.MetricsCollector.
type PrometheusCollector struct {
	opens          *prometheus.CounterVec
	searches       *prometheus.CounterVec
	searchLatency  prometheus.Histogram
	queries        prometheus.Counter
	leaves         prometheus.Histogram
	partitionCache *prometheus.CounterVec
}

// NewPrometheusCollector creates the collectors under namespace and
// registers them with reg.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_opens_total",
			Help:      "Index opens by status.",
		}, []string{"status"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search calls by status.",
		}, []string{"status"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Latency of search calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries answered successfully.",
		}),
		leaves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_leaves",
			Help:      "Distinct partitions scanned per search call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		partitionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_cache_lookups_total",
			Help:      "Partition cache lookups by result.",
		}, []string{"result"}),
	}

	for _, col := range []prometheus.Collector{c.opens, c.searches, c.searchLatency, c.queries, c.leaves, c.partitionCache} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordOpen counts an index open.
func (c *PrometheusCollector) RecordOpen(_ time.Duration, err error) {
	c.opens.WithLabelValues(status(err)).Inc()
}

// RecordSearch observes a search call.
func (c *PrometheusCollector) RecordSearch(queries, leaves int, duration time.Duration, err error) {
	c.searches.WithLabelValues(status(err)).Inc()
	c.searchLatency.Observe(duration.Seconds())
	if err == nil {
		c.queries.Add(float64(queries))
		c.leaves.Observe(float64(leaves))
	}
}

// RecordPartitionCache counts a partition cache lookup.
func (c *PrometheusCollector) RecordPartitionCache(hit bool) {
	if hit {
		c.partitionCache.WithLabelValues("hit").Inc()
	} else {
		c.partitionCache.WithLabelValues("miss").Inc()
	}
}
