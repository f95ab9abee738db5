// Package requestid provides request ID propagation for HTTP services.
//
// The middleware honors client-supplied X-Request-ID values when they are
// well-formed and generates UUIDs otherwise, so distributed traces survive
// proxies without letting clients inject log-breaking garbage.
package requestid
