package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/table"

	"github.com/hupe1980/scanngo/index"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/conv"
)

// ErrInvalidArtifacts is returned for artifacts that cannot be written.
var ErrInvalidArtifacts = errors.New("invalid index artifacts")

// Artifacts is everything an index is built from. Exactly one of
// HashedDatabase and FloatDatabase is set; each holds EmbeddingDim values
// per datapoint, datapoint after datapoint.
type Artifacts struct {
	Config       indexconfig.ScannOnDeviceConfig
	EmbeddingDim uint32

	HashedDatabase []byte
	FloatDatabase  []float32

	// PartitionAssignment maps datapoint i to its partition. Nil puts every
	// datapoint into partition 0.
	PartitionAssignment []uint32

	// Metadata holds one record per datapoint.
	Metadata [][]byte
	// UserInfo is written when non-nil.
	UserInfo []byte
}

// CreateIndexBuffer serializes artifacts into an index table. Datapoints are
// grouped by partition, keeping their relative order, and global ids are
// assigned partition after partition.
func CreateIndexBuffer(a *Artifacts, compression bool) ([]byte, error) {
	hashed := a.HashedDatabase != nil
	if hashed == (a.FloatDatabase != nil) {
		return nil, fmt.Errorf("%w: need exactly one of hashed and float database", ErrInvalidArtifacts)
	}
	if a.EmbeddingDim == 0 {
		return nil, fmt.Errorf("%w: embedding dimension is 0", ErrInvalidArtifacts)
	}

	dim := int(a.EmbeddingDim)
	var (
		numDatapoints int
		bytesPer      int
		raw           []byte
	)
	if hashed {
		numDatapoints = len(a.HashedDatabase) / dim
		bytesPer = dim
		raw = a.HashedDatabase
	} else {
		numDatapoints = len(a.FloatDatabase) / dim
		bytesPer = 4 * dim
		raw = conv.AppendFloat32s(nil, a.FloatDatabase)
	}
	if numDatapoints != len(a.Metadata) {
		return nil, fmt.Errorf("%w: %d embeddings but %d metadata records", ErrInvalidArtifacts, numDatapoints, len(a.Metadata))
	}

	numPartitions := 1
	if a.PartitionAssignment != nil {
		if len(a.PartitionAssignment) != numDatapoints {
			return nil, fmt.Errorf("%w: size of partition assignment and metadata mismatch", ErrInvalidArtifacts)
		}
		if a.Config.Partitioner == nil {
			return nil, fmt.Errorf("%w: partition assignment without partitioner", ErrInvalidArtifacts)
		}
		numPartitions = len(a.Config.Partitioner.Leaf)
	}

	partitions := make([][]byte, numPartitions)
	partitionMetadata := make([][][]byte, numPartitions)
	for i := range numDatapoints {
		p := 0
		if a.PartitionAssignment != nil {
			p = int(a.PartitionAssignment[i])
		}
		if p >= numPartitions {
			return nil, fmt.Errorf("%w: partition index %d is larger than number of partitions: %d", ErrInvalidArtifacts, p, numPartitions)
		}
		partitions[p] = append(partitions[p], raw[i*bytesPer:(i+1)*bytesPer]...)
		partitionMetadata[p] = append(partitionMetadata[p], a.Metadata[i])
	}

	cfg := &indexconfig.IndexConfig{
		ScannConfig:   &a.Config,
		EmbeddingType: indexconfig.EmbeddingFloat,
		EmbeddingDim:  a.EmbeddingDim,
	}
	if hashed {
		cfg.EmbeddingType = indexconfig.EmbeddingUint8
	}

	records := make(map[string][]byte, numPartitions+numDatapoints+2)
	var global uint32
	for p := range partitions {
		cfg.GlobalPartitionOffsets = append(cfg.GlobalPartitionOffsets, global)
		records[index.PartitionKey(uint32(p))] = partitions[p]
		for _, m := range partitionMetadata[p] {
			records[index.MetadataKey(global)] = m
			global++
		}
	}
	records[index.IndexConfigKey] = cfg.Marshal()
	if a.UserInfo != nil {
		records[index.UserInfoKey] = a.UserInfo
	}
	return WriteTable(records, compression)
}

// WriteTable writes records as a LevelDB table, keys in ascending byte
// order, optionally snappy-compressed.
func WriteTable(records map[string][]byte, compression bool) ([]byte, error) {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	o := &opt.Options{Compression: opt.NoCompression}
	if compression {
		o.Compression = opt.SnappyCompression
	}

	var buf bytes.Buffer
	w := table.NewWriter(&buf, o, nil, 0)
	for _, k := range keys {
		if err := w.Append([]byte(k), records[k]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
