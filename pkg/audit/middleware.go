package audit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/postlane/postlane/pkg/clientip"
	"github.com/postlane/postlane/pkg/principal"
)

// MiddlewareOptions configures the audit interceptor.
type MiddlewareOptions struct {
	// ExcludePaths lists path prefixes that are never audited
	// (health checks, metrics).
	ExcludePaths []string
	// IncludeBody captures the sanitized request body as changes.after for
	// create and update actions.
	IncludeBody bool
	// IncludeReads audits GET requests as well. Off by default; read
	// endpoints rarely justify a trail entry.
	IncludeReads bool
	// MaxBodyBytes caps how much of the request body is buffered for
	// capture. Zero means 64 KiB.
	MaxBodyBytes int64
}

// Middleware returns the audit interceptor. For every request whose method
// and path classify to an action, it observes the response and — after the
// handler has finished writing — builds an audit record and hands it to the
// dispatcher. The response is never delayed by audit work, and exactly one
// record is produced per matched request.
func Middleware(d *Dispatcher, c *Classifier, opts MiddlewareOptions) func(http.Handler) http.Handler {
	if d == nil {
		panic("audit.Middleware: dispatcher is required")
	}
	if c == nil {
		panic("audit.Middleware: classifier is required")
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range opts.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if r.Method == http.MethodGet && !opts.IncludeReads {
				next.ServeHTTP(w, r)
				return
			}

			// Query strings never participate in classification.
			action, params, ok := c.Classify(r.Method, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			var body []byte
			if opts.IncludeBody && action.CapturesBody() && r.Body != nil {
				// Truncation applies to the audit copy only; the handler
				// gets the captured prefix stitched back onto the unread
				// remainder.
				body, _ = io.ReadAll(io.LimitReader(r.Body, opts.MaxBodyBytes))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
			}

			rw := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			// The handler has unwound and the response is on its way to the
			// client; everything from here happens off the critical path.
			rec := buildRecord(r, action, params, body, rw.statusCode(), time.Since(start), opts)
			_ = d.Enqueue(rec)
		})
	}
}

func buildRecord(r *http.Request, action Action, params map[string]string, body []byte, statusCode int, duration time.Duration, opts MiddlewareOptions) Record {
	rec := Record{
		ID:     uuid.New().String(),
		Action: action,
		Resource: Resource{
			Type: action.ResourceType(),
			ID:   params["id"],
		},
		Request: RequestInfo{
			Method:    r.Method,
			Path:      r.URL.Path,
			IP:        clientip.GetIP(r),
			UserAgent: r.UserAgent(),
		},
		Status: StatusFromCode(statusCode),
		Metadata: map[string]any{
			"durationMillis": duration.Milliseconds(),
			"statusCode":     statusCode,
		},
	}

	if p, ok := principal.FromContext(r.Context()); ok && !p.IsZero() {
		rec.Principal = &Principal{UserID: p.UserID, UserEmail: p.UserEmail, OrgID: p.OrgID}
	}

	if len(body) > 0 {
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err == nil {
			if name, ok := payload["name"].(string); ok {
				rec.Resource.Name = name
			}
			if opts.IncludeBody && action.CapturesBody() {
				rec.Changes = &Changes{After: Sanitize(payload)}
			}
		}
	}

	return rec
}

// responseRecorder captures the status code the client observes.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap supports http.ResponseController passthrough.
func (rw *responseRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *responseRecorder) statusCode() int {
	if !rw.wroteHeader {
		return http.StatusOK
	}
	return rw.status
}
