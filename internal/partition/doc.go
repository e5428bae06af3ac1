// Package partition assigns queries to the coarse partitions (leaves) of an
// index by nearest-centroid lookup.
package partition
