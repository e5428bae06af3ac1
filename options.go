package scanngo

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/scanngo/blobstore"
)

// DefaultMaxResults is used when no max results option is given.
const DefaultMaxResults = 5

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceFile
	sourceContent
	sourceBlob
)

type indexSource struct {
	kind    sourceKind
	path    string
	content []byte
	store   blobstore.BlobStore
	name    string
}

func (s indexSource) String() string {
	switch s.kind {
	case sourceFile:
		return s.path
	case sourceContent:
		return "memory"
	case sourceBlob:
		return s.name
	default:
		return "none"
	}
}

// ResourceLimits bounds what searches may consume. Zero values mean
// unlimited.
type ResourceLimits struct {
	// MaxConcurrentSearches caps the number of Search calls executing at once.
	MaxConcurrentSearches int64 `envconfig:"MAX_CONCURRENT_SEARCHES"`
	// IOLimitBytesPerSec throttles reads of the index blob.
	IOLimitBytesPerSec int64 `envconfig:"IO_LIMIT_BYTES_PER_SEC"`
	// MemoryLimitBytes caps the bytes held by the partition cache.
	MemoryLimitBytes int64 `envconfig:"MEMORY_LIMIT_BYTES"`
}

type options struct {
	source             indexSource
	maxResults         int
	partitionCacheSize int
	preload            bool
	limits             ResourceLimits
	metricsCollector   MetricsCollector
	logger             *Logger
}

// Option configures New.
type Option func(*options)

// WithIndexFile reads the index from a local file. The file is memory
// mapped and must not change while the searcher is open.
func WithIndexFile(path string) Option {
	return func(o *options) {
		o.source = indexSource{kind: sourceFile, path: path}
	}
}

// WithIndexContent reads the index from buf, which must not be modified
// while the searcher is open.
func WithIndexContent(buf []byte) Option {
	return func(o *options) {
		o.source = indexSource{kind: sourceContent, content: buf}
	}
}

// WithIndexBlob reads the index from a blob store. Unless WithPreload is
// set, only the table blocks a query touches are fetched.
func WithIndexBlob(store blobstore.BlobStore, name string) Option {
	return func(o *options) {
		o.source = indexSource{kind: sourceBlob, store: store, name: name}
	}
}

// WithPreload loads the whole index into memory at open time.
func WithPreload(preload bool) Option {
	return func(o *options) {
		o.preload = preload
	}
}

// WithMaxResults sets how many neighbors a search returns at most. It must
// be at least 1.
func WithMaxResults(n int) Option {
	return func(o *options) {
		o.maxResults = n
	}
}

// WithPartitionCacheSize keeps up to n decoded partitions in memory. Zero
// disables the cache.
func WithPartitionCacheSize(n int) Option {
	return func(o *options) {
		o.partitionCacheSize = n
	}
}

// WithResourceLimits bounds concurrency, IO and cache memory.
func WithResourceLimits(limits ResourceLimits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithMetricsCollector configures a metrics collector. Pass nil to disable
// metrics collection.
//
//	metrics := &scanngo.BasicMetricsCollector{}
//	s, _ := scanngo.New(ctx, scanngo.WithIndexFile(path), scanngo.WithMetricsCollector(metrics))
//	// ... search ...
//	fmt.Println(metrics.GetStats().SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel installs a text logger at level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		maxResults:       DefaultMaxResults,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

type searchOptions struct {
	maxResults int
	filter     *roaring.Bitmap
}

// SearchOption configures a single Search or SearchBatch call.
type SearchOption func(*searchOptions)

// WithLimit overrides the searcher's max results for one call.
func WithLimit(n int) SearchOption {
	return func(o *searchOptions) {
		o.maxResults = n
	}
}

// WithFilter restricts results to the global datapoint ids in allowed.
// Candidates outside it never occupy a result slot.
func WithFilter(allowed *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.filter = allowed
	}
}
