// Package indexconfig decodes and validates the configuration record stored
// under the INDEX_CONFIG key of a scanngo index file.
//
// The record is a protocol buffer message. It is decoded field by field with
// protowire so that no generated code is needed:
//
//	IndexConfig
//	  1 scann_config             ScannOnDeviceConfig
//	  2 embedding_type           enum (UNSPECIFIED=0, UINT8=1, FLOAT=2)
//	  3 embedding_dim            uint32
//	  4 global_partition_offsets repeated uint32
//
//	ScannOnDeviceConfig
//	  1 partitioner    Partitioner
//	  2 indexer        Indexer
//	  3 query_distance enum (UNSPECIFIED=0, DOT_PRODUCT=1, SQUARED_L2_DISTANCE=2)
//
//	Partitioner       1 leaf repeated DatabasePoint, 2 search_fraction float, 3 query_distance enum
//	Indexer           1 asymmetric_hashing AsymmetricHashing
//	AsymmetricHashing 1 subspace repeated SubspaceCodebook, 2 query_distance enum,
//	                  3 lookup_type enum (FLOAT=0, INT8=1, INT16=2)
//	SubspaceCodebook  1 entry repeated DatabasePoint
//	DatabasePoint     1 dimension repeated float
//
// Repeated scalars are accepted packed and unpacked; Marshal writes them
// packed. Unknown fields are skipped.
package indexconfig
