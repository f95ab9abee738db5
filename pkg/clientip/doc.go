// Package clientip extracts the originating client IP from HTTP requests
// sitting behind load balancers and reverse proxies.
//
// Extraction prefers X-Forwarded-For, falling back to X-Real-IP and finally
// the direct RemoteAddr. Every candidate is validated with net.ParseIP so
// spoofed garbage in proxy headers never reaches the audit trail.
package clientip
