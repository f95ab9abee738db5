package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/postlane/postlane/pkg/audit"
	"github.com/postlane/postlane/pkg/clientip"
	"github.com/postlane/postlane/pkg/httpserver"
	"github.com/postlane/postlane/pkg/ratelimit"
	"github.com/postlane/postlane/pkg/requestid"
)

// Deps carries everything the router needs.
type Deps struct {
	Log        *slog.Logger
	Dispatcher *audit.Dispatcher
	Classifier *audit.Classifier
	Audit      *AuditHandler
	Segments   *SegmentHandler
	Limiter    ratelimit.Limiter
	// HealthChecks are readiness probes for backing stores.
	HealthChecks []func(context.Context) error
}

// Router assembles the API: request identity, rate limiting, the audit
// interceptor, then the resource routes. The health endpoint sits outside
// the middleware chain so probes are never rate limited or audited.
func Router(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)

	r.Get("/health", httpserver.HealthCheckHandler(deps.Log, deps.HealthChecks...))

	r.Route("/api", func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(ratelimit.Middleware(deps.Limiter, clientKey,
				ratelimit.WithOnLimitReached(func(w http.ResponseWriter, req *http.Request, res *ratelimit.Result) {
					if err := deps.Dispatcher.LogSecurityEvent(req, audit.ActionRateLimitExceeded, map[string]any{
						"path":  req.URL.Path,
						"limit": res.Limit,
					}); err != nil {
						deps.Log.ErrorContext(req.Context(), "security event dropped", slog.Any("error", err))
					}
					http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				}),
			))
		}
		r.Use(audit.Middleware(deps.Dispatcher, deps.Classifier, audit.MiddlewareOptions{
			IncludeBody: true,
		}))

		r.Get("/segment-templates", deps.Segments.Templates)
		r.Get("/security-events", deps.Audit.SecurityEvents)

		r.Route("/orgs/{orgID}", func(r chi.Router) {
			r.Get("/audit-logs", deps.Audit.List)

			r.Route("/segments", func(r chi.Router) {
				r.Get("/", deps.Segments.List)
				r.Post("/", deps.Segments.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.Segments.Get)
					r.Put("/", deps.Segments.Update)
					r.Delete("/", deps.Segments.Delete)
					r.Get("/count", deps.Segments.Count)
					r.Get("/preview", deps.Segments.Preview)
					r.Post("/refresh", deps.Segments.Refresh)
				})
			})
		})
	})

	return r
}

// clientKey buckets rate limiting by caller IP.
func clientKey(r *http.Request) string {
	return "ip:" + clientip.GetIP(r)
}
