package indexconfig

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanngo/distance"
)

// ErrInvalidConfig is returned when a decoded config is self-inconsistent.
var ErrInvalidConfig = errors.New("indexconfig: invalid config")

// Validate checks that the embedding type is set and agrees with the presence
// of a product-quantization codebook.
func (c *IndexConfig) Validate() error {
	hasIndexer := c.Scann().Indexer != nil
	switch c.EmbeddingType {
	case EmbeddingUnspecified:
		return fmt.Errorf("%w: embedding_type must not be left UNSPECIFIED", ErrInvalidConfig)
	case EmbeddingFloat:
		if hasIndexer {
			return fmt.Errorf("%w: embedding_type is FLOAT but a product quantization codebook is configured", ErrInvalidConfig)
		}
	case EmbeddingUint8:
		if !hasIndexer {
			return fmt.Errorf("%w: embedding_type is UINT8 but no product quantization codebook is configured", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unexpected embedding_type %v", ErrInvalidConfig, c.EmbeddingType)
	}
	return nil
}

// ResolveDistance returns the query distance. An unspecified top-level
// measure falls back to the asymmetric-hashing measure, then to the
// partitioner's; a measure found that way must agree with the partitioner.
func (c *ScannOnDeviceConfig) ResolveDistance() (distance.Measure, error) {
	measure := c.QueryDistance
	if measure != distance.Unspecified {
		return measure, nil
	}

	switch {
	case c.AsymmetricHashing() != nil:
		measure = c.AsymmetricHashing().QueryDistance
	case c.Partitioner != nil:
		measure = c.Partitioner.QueryDistance
	default:
		return distance.Unspecified, fmt.Errorf("%w: no distance measure configured", ErrInvalidConfig)
	}

	if measure == distance.Unspecified {
		return distance.Unspecified, fmt.Errorf("%w: UNSPECIFIED is not a valid distance measure", ErrInvalidConfig)
	}
	if c.Partitioner != nil && c.Partitioner.QueryDistance != measure {
		return distance.Unspecified, fmt.Errorf("%w: distance measure %v differs from partitioner distance measure %v",
			ErrInvalidConfig, measure, c.Partitioner.QueryDistance)
	}
	return measure, nil
}
