package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/kmeans"
	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/partition"
	"github.com/hupe1980/scanngo/internal/quantization"
)

// TrainOptions controls Train.
type TrainOptions struct {
	// NumPartitions is the number of leaves; 0 trains no partitioner.
	NumPartitions  int
	SearchFraction float32

	// NumSubspaces is the number of product-quantization subspaces; 0 keeps
	// the database in float.
	NumSubspaces int
	NumCenters   int
	LookupType   indexconfig.LookupType

	Measure distance.Measure
	MaxIter int
	Seed    int64
}

// Train builds index artifacts for vectors: k-means leaves, k-means
// codebooks per subspace, encoded datapoints and partition assignments.
// Metadata of datapoint i is the decimal string of i.
func Train(ctx context.Context, vectors [][]float32, opts TrainOptions) (*Artifacts, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors", ErrInvalidArtifacts)
	}
	dim := len(vectors[0])
	if opts.MaxIter == 0 {
		opts.MaxIter = 25
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	flat := make([]float32, 0, len(vectors)*dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: ragged vectors", ErrInvalidArtifacts)
		}
		flat = append(flat, v...)
	}

	a := &Artifacts{
		Config:   indexconfig.ScannOnDeviceConfig{QueryDistance: opts.Measure},
		Metadata: make([][]byte, len(vectors)),
	}
	for i := range vectors {
		a.Metadata[i] = []byte(strconv.Itoa(i))
	}

	if opts.NumPartitions > 0 {
		assignment, err := trainPartitioner(ctx, a, flat, dim, opts, rng)
		if err != nil {
			return nil, err
		}
		a.PartitionAssignment = assignment
	}

	if opts.NumSubspaces == 0 {
		a.EmbeddingDim = uint32(dim)
		a.FloatDatabase = flat
		return a, nil
	}

	ah, err := trainCodebooks(ctx, flat, dim, opts, rng)
	if err != nil {
		return nil, err
	}
	a.Config.Indexer = &indexconfig.Indexer{AsymmetricHashing: ah}

	indexer, err := quantization.NewIndexer(ah)
	if err != nil {
		return nil, err
	}
	a.EmbeddingDim = uint32(opts.NumSubspaces)
	a.HashedDatabase = make([]byte, len(vectors)*opts.NumSubspaces)
	for i, v := range vectors {
		if err := indexer.EncodeDatapoint(v, a.HashedDatabase[i*opts.NumSubspaces:(i+1)*opts.NumSubspaces]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func trainPartitioner(ctx context.Context, a *Artifacts, flat []float32, dim int, opts TrainOptions, rng *rand.Rand) ([]uint32, error) {
	leaves, err := kmeans.Train(ctx, flat, dim, opts.NumPartitions, distance.SquaredL2, opts.MaxIter, rng)
	if err != nil {
		return nil, err
	}

	proto := &indexconfig.Partitioner{
		SearchFraction: opts.SearchFraction,
		QueryDistance:  opts.Measure,
	}
	for j := range opts.NumPartitions {
		proto.Leaf = append(proto.Leaf, indexconfig.DatabasePoint{Dimension: leaves[j*dim : (j+1)*dim]})
	}
	a.Config.Partitioner = proto

	p, err := partition.New(proto)
	if err != nil {
		return nil, err
	}
	n := len(flat) / dim
	tokens := make([][]int, n)
	for i := range tokens {
		tokens[i] = make([]int, 1)
	}
	m, err := math32.MatrixFrom(dim, n, flat)
	if err != nil {
		return nil, err
	}
	if err := p.Partition(m, tokens); err != nil {
		return nil, err
	}

	assignment := make([]uint32, n)
	for i, tok := range tokens {
		assignment[i] = uint32(tok[0])
	}
	return assignment, nil
}

func trainCodebooks(ctx context.Context, flat []float32, dim int, opts TrainOptions, rng *rand.Rand) (*indexconfig.AsymmetricHashing, error) {
	s := opts.NumSubspaces
	if s > dim {
		return nil, fmt.Errorf("%w: %d subspaces for %d dimensions", ErrInvalidArtifacts, s, dim)
	}
	n := len(flat) / dim

	ah := &indexconfig.AsymmetricHashing{
		QueryDistance: opts.Measure,
		LookupType:    opts.LookupType,
	}
	offset := 0
	for sub := range s {
		// The first dim%s subspaces take one extra dimension.
		width := dim / s
		if sub < dim%s {
			width++
		}

		slice := make([]float32, 0, n*width)
		for i := range n {
			slice = append(slice, flat[i*dim+offset:i*dim+offset+width]...)
		}
		centers, err := kmeans.Train(ctx, slice, width, opts.NumCenters, distance.SquaredL2, opts.MaxIter, rng)
		if err != nil {
			return nil, err
		}

		var codebook indexconfig.SubspaceCodebook
		for k := range opts.NumCenters {
			codebook.Entry = append(codebook.Entry, indexconfig.DatabasePoint{Dimension: centers[k*width : (k+1)*width]})
		}
		ah.Subspace = append(ah.Subspace, codebook)
		offset += width
	}
	return ah, nil
}
