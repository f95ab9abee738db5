// Package ratelimit implements sliding-window request rate limiting.
//
// A Limiter checks keys (client IPs, API keys) against a fixed limit within
// a moving window. State lives in a pluggable Store: MemoryStore for
// single-instance deployments and tests, RedisStore for shared state across
// replicas, where the check-and-record runs atomically as a Lua script.
//
// The HTTP middleware fails open on storage errors and exposes an
// OnLimitReached hook; the API server uses it to record rate_limit_exceeded
// security events in the audit trail.
package ratelimit
