package scanngo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational measurements. Implement it to feed a
// monitoring system; metric.PrometheusCollector is one such implementation.
type MetricsCollector interface {
	// RecordOpen is called once per New.
	RecordOpen(duration time.Duration, err error)
	// RecordSearch is called after each Search or SearchBatch. leaves is the
	// number of distinct partitions scanned.
	RecordSearch(queries, leaves int, duration time.Duration, err error)
	// RecordPartitionCache is called for every partition lookup when the
	// partition cache is enabled.
	RecordPartitionCache(hit bool)
}

// NoopMetricsCollector discards every measurement.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)             {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPartitionCache(bool)                   {}

// BasicMetricsCollector keeps counters in memory.
type BasicMetricsCollector struct {
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchQueries    atomic.Int64
	SearchLeaves     atomic.Int64
	SearchTotalNanos atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(queries, leaves int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchQueries.Add(int64(queries))
	b.SearchLeaves.Add(int64(leaves))
}

// RecordPartitionCache implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartitionCache(hit bool) {
	if hit {
		b.CacheHits.Add(1)
	} else {
		b.CacheMisses.Add(1)
	}
}

// BasicMetricsStats is a snapshot of a BasicMetricsCollector.
type BasicMetricsStats struct {
	OpenCount      int64
	OpenErrors     int64
	SearchCount    int64
	SearchErrors   int64
	SearchQueries  int64
	SearchLeaves   int64
	SearchAvgNanos int64
	CacheHits      int64
	CacheMisses    int64
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		OpenCount:     b.OpenCount.Load(),
		OpenErrors:    b.OpenErrors.Load(),
		SearchCount:   b.SearchCount.Load(),
		SearchErrors:  b.SearchErrors.Load(),
		SearchQueries: b.SearchQueries.Load(),
		SearchLeaves:  b.SearchLeaves.Load(),
		CacheHits:     b.CacheHits.Load(),
		CacheMisses:   b.CacheMisses.Load(),
	}
	if s.SearchCount > 0 {
		s.SearchAvgNanos = b.SearchTotalNanos.Load() / s.SearchCount
	}
	return s
}
