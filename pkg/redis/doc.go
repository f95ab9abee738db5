// Package redis provides Redis connection management.
//
// The rate limiter is the primary consumer; the connector mirrors the mongo
// package's retry-then-verify approach so both stores fail fast and loudly
// at startup rather than mid-request.
package redis
