package indexconfig

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/hupe1980/scanngo/distance"
)

func exampleConfig() *IndexConfig {
	return &IndexConfig{
		ScannConfig: &ScannOnDeviceConfig{
			Partitioner: &Partitioner{
				Leaf: []DatabasePoint{
					{Dimension: []float32{0.1, 0.2}},
					{Dimension: []float32{0.2, 0.1}},
				},
				SearchFraction: 0.5,
				QueryDistance:  distance.SquaredL2,
			},
			Indexer: &Indexer{AsymmetricHashing: &AsymmetricHashing{
				Subspace: []SubspaceCodebook{
					{Entry: []DatabasePoint{{Dimension: []float32{1}}, {Dimension: []float32{-1}}}},
				},
				QueryDistance: distance.SquaredL2,
				LookupType:    LookupInt16,
			}},
		},
		EmbeddingType:          EmbeddingUint8,
		EmbeddingDim:           4,
		GlobalPartitionOffsets: []uint32{0, 2},
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	want := exampleConfig()

	got, err := Unmarshal(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnmarshalUnpackedAndUnknownFields(t *testing.T) {
	var point []byte
	for _, v := range []float32{1.5, -2} {
		point = protowire.AppendTag(point, 1, protowire.Fixed32Type)
		point = protowire.AppendFixed32(point, math.Float32bits(v))
	}

	var partitioner []byte
	partitioner = appendMessage(partitioner, 1, point)
	// Unknown varint and bytes fields.
	partitioner = protowire.AppendTag(partitioner, 9, protowire.VarintType)
	partitioner = protowire.AppendVarint(partitioner, 77)
	partitioner = appendMessage(partitioner, 10, []byte("ignored"))

	var scann []byte
	scann = appendMessage(scann, 1, partitioner)

	var b []byte
	b = appendMessage(b, 1, scann)
	for _, off := range []uint64{0, 3, 9} {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, off)
	}

	got, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 3, 9}, got.GlobalPartitionOffsets)
	require.NotNil(t, got.ScannConfig)
	require.NotNil(t, got.ScannConfig.Partitioner)
	assert.Equal(t, []DatabasePoint{{Dimension: []float32{1.5, -2}}}, got.ScannConfig.Partitioner.Leaf)
	assert.Nil(t, got.ScannConfig.Indexer)
}

func TestUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"TruncatedTag", []byte{0x80}},
		{"TruncatedMessage", []byte{0x0a, 0x05, 0x01}},
		{"WrongWireType", []byte{0x10 | byte(protowire.BytesType), 0x00}},
		{"OddPackedFloats", appendMessage(nil, 1, appendMessage(nil, 1, appendMessage(nil, 1, appendMessage(nil, 1, []byte{1, 2, 3}))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.data)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestAccessorsOnEmptyConfig(t *testing.T) {
	c := &IndexConfig{}
	assert.NotNil(t, c.Scann())
	assert.Nil(t, c.Scann().AsymmetricHashing())
	assert.Equal(t, "UINT8", EmbeddingUint8.String())
	assert.Equal(t, "INT16", LookupInt16.String())
}
