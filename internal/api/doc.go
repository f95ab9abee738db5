// Package api assembles the HTTP surface: resource handlers, the error
// envelope, and the middleware chain (request identity, rate limiting, the
// audit interceptor) over chi.
package api
