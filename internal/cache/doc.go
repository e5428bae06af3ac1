// Package cache provides an LRU cache for immutable blocks read from remote
// blob stores.
package cache
