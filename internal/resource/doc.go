// Package resource limits what concurrent searches may consume.
//
// A Controller bounds three things:
//
//   - Searches: the number of queries executing at once (blocking semaphore).
//   - IO: bytes per second read from remote index blobs (token bucket).
//   - Memory: bytes held by decoded partition caches (fail-fast).
//
// A nil *Controller is valid and imposes no limits.
package resource
