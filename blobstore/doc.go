// Package blobstore provides read access to index files wherever they live.
//
// A BlobStore opens immutable blobs by name. LocalStore maps files from disk,
// MemoryStore keeps them on the heap, and the s3 and minio subpackages read
// them from object storage with ranged requests. CachingStore adds a block
// cache in front of any store.
//
// Blobs are turned into an io.ReaderAt with NewReaderAt, which is what the
// SSTable reader consumes, or loaded fully with ReadAll.
package blobstore
