// Package mmap maps index files into memory read-only.
//
// A Mapping is safe for concurrent reads. Slices returned by Bytes are valid
// only until Close; callers must not retain them past that point.
//
// On Unix the mapping uses mmap(2) and madvise(2). On Windows it uses
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
package mmap
