package quantization

import (
	"fmt"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
)

// Indexer encodes float datapoints into one code per subspace and decodes
// them back to the chosen centers.
type Indexer struct {
	codebooks *Codebooks
	measure   distance.Measure
	dist      distance.Func
}

// NewIndexer creates an Indexer from an asymmetric-hashing config. The config
// must name a dot-product or squared-L2 measure.
func NewIndexer(proto *indexconfig.AsymmetricHashing) (*Indexer, error) {
	cb, err := NewCodebooks(proto)
	if err != nil {
		return nil, err
	}
	dist, err := distance.Provider(proto.QueryDistance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDistance, proto.QueryDistance)
	}
	return &Indexer{codebooks: cb, measure: proto.QueryDistance, dist: dist}, nil
}

// Codebooks returns the codebooks the indexer encodes with.
func (x *Indexer) Codebooks() *Codebooks { return x.codebooks }

// EncodeDatapoint writes into encoded[s] the center of subspace s closest to
// the matching slice of datapoint. datapoint must have exactly Dims values and
// encoded room for NumSubspaces codes. Ties keep the lowest code.
func (x *Indexer) EncodeDatapoint(datapoint []float32, encoded []byte) error {
	cb := x.codebooks
	if len(datapoint) != cb.totalDims || len(encoded) < cb.NumSubspaces() {
		return fmt.Errorf("%w: datapoint has %d dimensions and %d code bytes, expected %d and %d",
			ErrDimensionMismatch, len(datapoint), len(encoded), cb.totalDims, cb.NumSubspaces())
	}

	for s := range cb.dims {
		slice := datapoint[cb.offsets[s] : cb.offsets[s]+cb.dims[s]]
		best, bestDist := 0, x.dist(slice, cb.Center(s, 0))
		for k := 1; k < cb.numCenters; k++ {
			if d := x.dist(slice, cb.Center(s, k)); d < bestDist {
				best, bestDist = k, d
			}
		}
		encoded[s] = byte(best)
	}
	return nil
}

// DecodeDatapoint concatenates the centers selected by encoded into
// reconstructed, which must hold at least Dims values.
func (x *Indexer) DecodeDatapoint(encoded []byte, reconstructed []float32) error {
	cb := x.codebooks
	if len(encoded) < cb.NumSubspaces() {
		return fmt.Errorf("%w: %d codes for %d subspaces", ErrDimensionMismatch, len(encoded), cb.NumSubspaces())
	}
	if len(reconstructed) < cb.totalDims {
		return fmt.Errorf("%w: %d values for %d dimensions", ErrDimensionMismatch, len(reconstructed), cb.totalDims)
	}

	for s := range cb.dims {
		code := int(encoded[s])
		if code >= cb.numCenters {
			return fmt.Errorf("%w: code %d in subspace %d exceeds %d centers", ErrInvalidCodebook, code, s, cb.numCenters)
		}
		copy(reconstructed[cb.offsets[s]:], cb.Center(s, code))
	}
	return nil
}
