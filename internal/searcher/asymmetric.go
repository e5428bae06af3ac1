package searcher

import (
	"fmt"
	"math"

	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/pool"
	"github.com/hupe1980/scanngo/internal/quantization"
)

// Option configures an AsymmetricHash searcher.
type Option func(*AsymmetricHash)

// WithMiniBatchSize bounds the number of queries scored at once, which bounds
// the size of the dense distance matrix. Results do not depend on it.
func WithMiniBatchSize(n int) Option {
	return func(s *AsymmetricHash) {
		s.miniBatchSize = n
	}
}

// AsymmetricHash searches one partition of product-quantized datapoints.
type AsymmetricHash struct {
	codes         Codes
	globalOffset  int
	preprocessor  Preprocessor
	miniBatchSize int
}

var _ Searcher = (*AsymmetricHash)(nil)

// NewAsymmetricHash creates a searcher over codes whose first datapoint has
// global id globalOffset. Queries are unbatched unless WithMiniBatchSize is
// given.
func NewAsymmetricHash(codes Codes, globalOffset int, preprocessor Preprocessor, opts ...Option) (*AsymmetricHash, error) {
	s := &AsymmetricHash{
		codes:         codes,
		globalOffset:  globalOffset,
		preprocessor:  preprocessor,
		miniBatchSize: math.MaxInt,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.miniBatchSize <= 0 {
		return nil, fmt.Errorf("%w: mini batch size %d", ErrInvalidSearcher, s.miniBatchSize)
	}
	if globalOffset < 0 {
		return nil, fmt.Errorf("%w: negative global offset %d", ErrInvalidSearcher, globalOffset)
	}
	if preprocessor == nil {
		return nil, fmt.Errorf("%w: no preprocessor", ErrInvalidSearcher)
	}
	return s, nil
}

// FindNeighbors processes queries in mini batches and scores each batch.
func (s *AsymmetricHash) FindNeighbors(queries math32.Matrix, topn []*TopN) error {
	if len(topn) != queries.Cols {
		return fmt.Errorf("%w: %d selectors for %d queries", ErrDimensionMismatch, len(topn), queries.Cols)
	}

	scratch := pool.Get()
	defer pool.Put(scratch)

	for i := 0; i < queries.Cols; i += s.miniBatchSize {
		end := i + min(s.miniBatchSize, queries.Cols-i)
		if err := s.preprocessor.Process(queries.ColRange(i, end), &scratch.Info); err != nil {
			return err
		}
		if err := AsymmetricHashFindNeighbors(&scratch.Info, s.codes, s.globalOffset, topn[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// FindNeighborsWithQueryInfo scores a batch whose lookup tables were already
// computed, typically once for all partitions a query visits.
func (s *AsymmetricHash) FindNeighborsWithQueryInfo(info *quantization.QueryInfo, topn []*TopN) error {
	return AsymmetricHashFindNeighbors(info, s.codes, s.globalOffset, topn)
}
