package indexconfig

import (
	"fmt"

	"github.com/hupe1980/scanngo/distance"
)

// EmbeddingType is the element type of the partitions stored in an index.
type EmbeddingType int32

const (
	EmbeddingUnspecified EmbeddingType = 0
	// EmbeddingUint8 partitions hold one product-quantization code per
	// subspace per datapoint.
	EmbeddingUint8 EmbeddingType = 1
	// EmbeddingFloat partitions hold little-endian float32 vectors.
	EmbeddingFloat EmbeddingType = 2
)

func (t EmbeddingType) String() string {
	switch t {
	case EmbeddingUnspecified:
		return "UNSPECIFIED"
	case EmbeddingUint8:
		return "UINT8"
	case EmbeddingFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// LookupType is the numeric type of the per-query lookup table used for
// asymmetric-hashing search.
type LookupType int32

const (
	LookupFloat LookupType = 0
	LookupInt8  LookupType = 1
	LookupInt16 LookupType = 2
)

func (t LookupType) String() string {
	switch t {
	case LookupFloat:
		return "FLOAT"
	case LookupInt8:
		return "INT8"
	case LookupInt16:
		return "INT16"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// DatabasePoint is a dense float vector: a partition centroid or a codebook
// entry.
type DatabasePoint struct {
	Dimension []float32
}

// SubspaceCodebook holds the centers of one subspace.
type SubspaceCodebook struct {
	Entry []DatabasePoint
}

// AsymmetricHashing describes a product quantizer.
type AsymmetricHashing struct {
	Subspace      []SubspaceCodebook
	QueryDistance distance.Measure
	LookupType    LookupType
}

// Indexer wraps the datapoint encoding of an index.
type Indexer struct {
	AsymmetricHashing *AsymmetricHashing
}

// Partitioner describes the coarse clustering of an index.
type Partitioner struct {
	Leaf           []DatabasePoint
	SearchFraction float32
	QueryDistance  distance.Measure
}

// ScannOnDeviceConfig groups the search configuration.
type ScannOnDeviceConfig struct {
	Partitioner   *Partitioner
	Indexer       *Indexer
	QueryDistance distance.Measure
}

// IndexConfig is the configuration record of an index file.
type IndexConfig struct {
	ScannConfig            *ScannOnDeviceConfig
	EmbeddingType          EmbeddingType
	EmbeddingDim           uint32
	GlobalPartitionOffsets []uint32
}

// Scann returns the search configuration, never nil.
func (c *IndexConfig) Scann() *ScannOnDeviceConfig {
	if c.ScannConfig == nil {
		return &ScannOnDeviceConfig{}
	}
	return c.ScannConfig
}

// AsymmetricHashing returns the product quantizer or nil.
func (c *ScannOnDeviceConfig) AsymmetricHashing() *AsymmetricHashing {
	if c.Indexer == nil {
		return nil
	}
	return c.Indexer.AsymmetricHashing
}
