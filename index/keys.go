package index

import "strconv"

const (
	// IndexConfigKey holds the serialized index config.
	IndexConfigKey = "INDEX_CONFIG"
	// UserInfoKey holds the optional user info.
	UserInfoKey = "USER_INFO"

	partitionPrefix = "E_"
	metadataPrefix  = "M_"
)

// PartitionKey returns the key of partition i.
func PartitionKey(i uint32) string {
	return partitionPrefix + strconv.FormatUint(uint64(i), 10)
}

// MetadataKey returns the key of the metadata of datapoint i.
func MetadataKey(i uint32) string {
	return metadataPrefix + strconv.FormatUint(uint64(i), 10)
}
