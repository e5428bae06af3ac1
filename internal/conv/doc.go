// Package conv provides checked integer conversions and little-endian
// float32 encoding for records read from an index.
package conv
