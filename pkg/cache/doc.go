// Package cache provides a generic in-process LRU cache.
//
// The audit reader uses it to memoize user lookups when rendering audit
// listings, keeping principal resolution off the hot path without a second
// round trip per record.
package cache
