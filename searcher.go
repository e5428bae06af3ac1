package scanngo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/index"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/conv"
	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/partition"
	"github.com/hupe1980/scanngo/internal/pool"
	"github.com/hupe1980/scanngo/internal/quantization"
	"github.com/hupe1980/scanngo/internal/resource"
	"github.com/hupe1980/scanngo/internal/searcher"
)

// Neighbor is one search result.
type Neighbor struct {
	// ID is the global datapoint id.
	ID uint32
	// Distance is smaller for closer datapoints. For dot product it is the
	// negated inner product.
	Distance float32
	// Metadata is the record stored with the datapoint.
	Metadata []byte
}

// SearchResult holds the neighbors of one query, closest first.
type SearchResult struct {
	Neighbors []Neighbor
}

// EmbeddingSearcher answers nearest neighbor queries against one index. It
// is safe for concurrent use.
type EmbeddingSearcher struct {
	index  *index.Index
	config *indexconfig.IndexConfig

	measure       distance.Measure
	partitioner   partition.Partitioner
	querier       *quantization.Querier
	numLeaves     int
	queryDim      int
	embeddingDim  int
	embeddingType indexconfig.EmbeddingType
	offsets       []int
	maxResults    int

	cache      *lru.Cache[uint32, *partitionData]
	controller *resource.Controller
	logger     *Logger
	metrics    MetricsCollector

	closed atomic.Bool
}

// partitionData is a partition ready to be scanned: code bytes for a
// quantized index, decoded values for a float one.
type partitionData struct {
	codes  []byte
	floats []float32
}

func (p *partitionData) size() int64 {
	return int64(len(p.codes) + 4*len(p.floats))
}

// New opens an index and prepares it for searching. Exactly one of
// WithIndexFile, WithIndexContent or WithIndexBlob must be given.
//
//	s, err := scanngo.New(ctx, scanngo.WithIndexFile("index.sst"), scanngo.WithMaxResults(10))
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	res, err := s.Search(ctx, embedding)
func New(ctx context.Context, optFns ...Option) (*EmbeddingSearcher, error) {
	start := time.Now()
	o := applyOptions(optFns)
	logger := o.logger.WithIndex(o.source.String())

	s, err := open(ctx, o, logger)
	err = translateError(err)
	elapsed := time.Since(start)
	o.metricsCollector.RecordOpen(elapsed, err)
	logger.LogOpen(ctx, s, elapsed, err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func open(ctx context.Context, o options, logger *Logger) (*EmbeddingSearcher, error) {
	if o.maxResults < 1 {
		return nil, fmt.Errorf("%w: max results must be at least 1, got %d", ErrInvalidArgument, o.maxResults)
	}
	if o.partitionCacheSize < 0 {
		return nil, fmt.Errorf("%w: negative partition cache size %d", ErrInvalidArgument, o.partitionCacheSize)
	}

	s := &EmbeddingSearcher{
		maxResults: o.maxResults,
		controller: resource.NewController(resource.Config(o.limits)),
		logger:     logger,
		metrics:    o.metricsCollector,
	}

	l := &loader{controller: s.controller, preload: o.preload}
	idx, err := l.open(ctx, o.source)
	if err != nil {
		return nil, err
	}
	s.index = idx

	if err := s.init(o.partitionCacheSize); err != nil {
		return nil, errors.Join(err, idx.Close())
	}
	return s, nil
}

func (s *EmbeddingSearcher) init(cacheSize int) error {
	cfg, err := s.index.IndexConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	scann := cfg.Scann()
	measure, err := scann.ResolveDistance()
	if err != nil {
		return err
	}

	s.config = cfg
	s.measure = measure
	s.embeddingType = cfg.EmbeddingType
	s.embeddingDim = int(cfg.EmbeddingDim)
	s.offsets = make([]int, len(cfg.GlobalPartitionOffsets))
	for i, off := range cfg.GlobalPartitionOffsets {
		if s.offsets[i], err = conv.Uint32ToInt(off); err != nil {
			return fmt.Errorf("%w: global partition offset %d: %w", ErrInvalidConfig, i, err)
		}
	}
	if s.embeddingDim == 0 {
		return fmt.Errorf("%w: embedding dimension is 0", ErrInvalidConfig)
	}

	s.queryDim = s.embeddingDim
	if ah := scann.AsymmetricHashing(); ah != nil {
		q, err := quantization.NewQuerier(ah)
		if err != nil {
			return err
		}
		if q.NumDatabaseDims() != s.embeddingDim {
			return fmt.Errorf("%w: codebook has %d subspaces but datapoints hold %d codes",
				ErrInvalidConfig, q.NumDatabaseDims(), s.embeddingDim)
		}
		s.querier = q
		s.queryDim = q.NumQueryDims()
	}

	if p := scann.Partitioner; p != nil {
		c, err := partition.New(p)
		if err != nil {
			return err
		}
		if c.Dims() != s.queryDim {
			return fmt.Errorf("%w: partitioner has %d dimensions, queries %d", ErrInvalidConfig, c.Dims(), s.queryDim)
		}
		s.partitioner = c
		s.numLeaves = partition.LeavesToSearch(c.NumPartitions(), p.SearchFraction)
	} else {
		s.partitioner = partition.NoOp{}
		s.numLeaves = 1
	}

	if n := s.partitioner.NumPartitions(); len(s.offsets) < n {
		// An unpartitioned index may leave its single offset implicit.
		if _, noop := s.partitioner.(partition.NoOp); !noop || len(s.offsets) != 0 {
			return fmt.Errorf("%w: %d global partition offsets for %d partitions", ErrInvalidConfig, len(s.offsets), n)
		}
	}

	if cacheSize > 0 {
		c, err := lru.NewWithEvict(cacheSize, func(_ uint32, p *partitionData) {
			s.controller.ReleaseMemory(p.size())
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		s.cache = c
	}
	return nil
}

// Search returns the nearest neighbors of embedding.
func (s *EmbeddingSearcher) Search(ctx context.Context, embedding []float32, opts ...SearchOption) (*SearchResult, error) {
	res, err := s.SearchBatch(ctx, [][]float32{embedding}, opts...)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

// SearchBatch searches several embeddings at once. Lookup tables are built
// once for the whole batch and each partition is read once, however many
// queries select it. Results are in query order.
func (s *EmbeddingSearcher) SearchBatch(ctx context.Context, embeddings [][]float32, opts ...SearchOption) ([]*SearchResult, error) {
	start := time.Now()
	so := searchOptions{maxResults: s.maxResults}
	for _, fn := range opts {
		if fn != nil {
			fn(&so)
		}
	}

	results, leaves, err := s.search(ctx, embeddings, so)
	err = translateError(err)

	total := 0
	for _, r := range results {
		total += len(r.Neighbors)
	}
	s.metrics.RecordSearch(len(embeddings), leaves, time.Since(start), err)
	s.logger.LogSearch(ctx, len(embeddings), so.maxResults, leaves, total, err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *EmbeddingSearcher) search(ctx context.Context, embeddings [][]float32, so searchOptions) ([]*SearchResult, int, error) {
	if s.closed.Load() {
		return nil, 0, ErrClosed
	}
	if so.maxResults < 1 {
		return nil, 0, fmt.Errorf("%w: max results must be at least 1, got %d", ErrInvalidArgument, so.maxResults)
	}
	if len(embeddings) == 0 {
		return []*SearchResult{}, 0, nil
	}

	data := make([]float32, 0, len(embeddings)*s.queryDim)
	for _, e := range embeddings {
		if len(e) != s.queryDim {
			return nil, 0, &ErrDimensionMismatch{Expected: s.queryDim, Actual: len(e)}
		}
		data = append(data, e...)
	}
	queries, err := math32.MatrixFrom(s.queryDim, len(embeddings), data)
	if err != nil {
		return nil, 0, err
	}

	if err := s.controller.AcquireSearch(ctx); err != nil {
		return nil, 0, err
	}
	defer s.controller.ReleaseSearch()

	tokens := make([][]int, len(embeddings))
	for j := range tokens {
		tokens[j] = make([]int, s.numLeaves)
	}
	if err := s.partitioner.Partition(queries, tokens); err != nil {
		return nil, 0, err
	}

	topn := make([]*searcher.TopN, len(embeddings))
	for j := range topn {
		topn[j] = searcher.NewTopN(so.maxResults, searcher.Worst)
		if so.filter != nil {
			topn[j].SetFilter(so.filter)
		}
	}

	scratch := pool.Get()
	defer pool.Put(scratch)

	// Group queries by leaf so each partition is read once.
	var leaves []int
	selected := make(map[int][]int)
	for j, tok := range tokens {
		for _, leaf := range tok {
			if !scratch.MarkPartition(leaf) {
				leaves = append(leaves, leaf)
			}
			selected[leaf] = append(selected[leaf], j)
		}
	}
	slices.Sort(leaves)

	if s.querier != nil {
		if err := s.querier.Process(queries, &scratch.Info); err != nil {
			return nil, 0, err
		}
	}

	masked := make([]*searcher.TopN, len(topn))
	for _, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		clear(masked)
		for _, j := range selected[leaf] {
			masked[j] = topn[j]
		}
		if err := s.searchLeaf(ctx, scratch, queries, leaf, masked); err != nil {
			return nil, 0, err
		}
	}

	results := make([]*SearchResult, len(topn))
	for j, t := range topn {
		neighbors, err := s.collect(t.Take())
		if err != nil {
			return nil, 0, err
		}
		results[j] = &SearchResult{Neighbors: neighbors}
	}
	return results, len(leaves), nil
}

func (s *EmbeddingSearcher) searchLeaf(ctx context.Context, scratch *pool.Scratch, queries math32.Matrix, leaf int, topn []*searcher.TopN) error {
	p, err := s.partition(ctx, scratch, leaf)
	if err != nil {
		return err
	}
	offset := s.globalOffset(leaf)

	if s.querier != nil {
		codes, err := searcher.NewCodes(s.embeddingDim, p.codes)
		if err != nil {
			return fmt.Errorf("%w: partition %d: %w", ErrInvalidIndex, leaf, err)
		}
		if codes.NumDatapoints() == 0 {
			return nil
		}
		return searcher.AsymmetricHashFindNeighbors(&scratch.Info, codes, offset, topn)
	}

	n := len(p.floats) / s.embeddingDim
	if n == 0 {
		return nil
	}
	database, err := math32.MatrixFrom(s.embeddingDim, n, p.floats)
	if err != nil {
		return fmt.Errorf("%w: partition %d: %w", ErrInvalidIndex, leaf, err)
	}
	return searcher.FloatFindNeighbors(queries, database, offset, s.measure, topn)
}

func (s *EmbeddingSearcher) globalOffset(leaf int) int {
	if leaf < len(s.offsets) {
		return s.offsets[leaf]
	}
	return 0
}

// partition returns the scannable form of leaf. Without a cache, float
// partitions are decoded into scratch and stay valid until the next call.
func (s *EmbeddingSearcher) partition(ctx context.Context, scratch *pool.Scratch, leaf int) (*partitionData, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(uint32(leaf)); ok {
			s.metrics.RecordPartitionCache(true)
			return p, nil
		}
		s.metrics.RecordPartitionCache(false)
	}

	raw, err := s.index.PartitionAt(uint32(leaf))
	if err != nil {
		return nil, err
	}

	p := &partitionData{}
	if s.querier != nil {
		p.codes = raw
	} else {
		stride := 4 * s.embeddingDim
		if len(raw)%stride != 0 {
			return nil, fmt.Errorf("%w: partition %d holds %d bytes, not a multiple of %d",
				ErrInvalidIndex, leaf, len(raw), stride)
		}
		var dst []float32
		if s.cache != nil {
			dst = make([]float32, len(raw)/4)
		} else {
			dst = scratch.Floats(len(raw) / 4)
		}
		if err := conv.Float32sFromBytes(dst, raw); err != nil {
			return nil, fmt.Errorf("%w: partition %d: %w", ErrInvalidIndex, leaf, err)
		}
		p.floats = dst
	}

	if s.cache != nil {
		s.cachePartition(ctx, leaf, p)
	}
	return p, nil
}

func (s *EmbeddingSearcher) cachePartition(ctx context.Context, leaf int, p *partitionData) {
	size := p.size()
	if err := s.controller.AcquireMemory(size); err != nil {
		s.logger.LogCacheReject(ctx, leaf, size)
		return
	}
	if ok, _ := s.cache.ContainsOrAdd(uint32(leaf), p); ok {
		// A concurrent search cached it first.
		s.controller.ReleaseMemory(size)
	}
}

func (s *EmbeddingSearcher) collect(top []searcher.Neighbor) ([]Neighbor, error) {
	neighbors := make([]Neighbor, 0, len(top))
	for _, n := range top {
		if n.ID == -1 {
			break
		}
		id, err := conv.IntToUint32(n.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: datapoint id: %w", ErrInvalidIndex, err)
		}
		md, err := s.index.MetadataAt(id)
		if err != nil {
			return nil, fmt.Errorf("metadata of datapoint %d: %w", id, err)
		}
		neighbors = append(neighbors, Neighbor{ID: id, Distance: n.Distance, Metadata: md})
	}
	return neighbors, nil
}

// UserInfo returns the user info stored in the index, or "" when there is
// none.
func (s *EmbeddingSearcher) UserInfo() (string, error) {
	if s.closed.Load() {
		return "", ErrClosed
	}
	b, err := s.index.UserInfo()
	if err != nil {
		return "", translateError(err)
	}
	return string(b), nil
}

// IndexConfig returns the decoded config of the index. It must not be
// modified.
func (s *EmbeddingSearcher) IndexConfig() *indexconfig.IndexConfig { return s.config }

// Dims returns the dimensionality queries must have.
func (s *EmbeddingSearcher) Dims() int { return s.queryDim }

// Measure returns the distance measure results are ranked by.
func (s *EmbeddingSearcher) Measure() distance.Measure { return s.measure }

// NumPartitions returns the number of partitions in the index.
func (s *EmbeddingSearcher) NumPartitions() int { return s.partitioner.NumPartitions() }

// LeavesToSearch returns how many partitions each query scans.
func (s *EmbeddingSearcher) LeavesToSearch() int { return s.numLeaves }

// MaxResults returns the default number of neighbors per query.
func (s *EmbeddingSearcher) MaxResults() int { return s.maxResults }

// Close releases the index. Searches after Close fail with ErrClosed.
// Closing twice is a no-op.
func (s *EmbeddingSearcher) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return s.index.Close()
}
