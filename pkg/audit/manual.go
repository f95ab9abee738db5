package audit

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/postlane/postlane/pkg/clientip"
	"github.com/postlane/postlane/pkg/principal"
)

// RecordOption customizes a manually logged record.
type RecordOption func(*Record)

// WithResource sets the resource type and ID.
func WithResource(resourceType, id string) RecordOption {
	return func(rec *Record) {
		rec.Resource.Type = resourceType
		rec.Resource.ID = id
	}
}

// WithResourceName sets the resource display name.
func WithResourceName(name string) RecordOption {
	return func(rec *Record) {
		rec.Resource.Name = name
	}
}

// WithChanges attaches before/after snapshots. Both are sanitized.
func WithChanges(before, after map[string]any) RecordOption {
	return func(rec *Record) {
		rec.Changes = &Changes{Before: Sanitize(before), After: Sanitize(after)}
	}
}

// WithMetadata adds a metadata entry.
func WithMetadata(key string, value any) RecordOption {
	return func(rec *Record) {
		if rec.Metadata == nil {
			rec.Metadata = make(map[string]any)
		}
		rec.Metadata[key] = value
	}
}

// WithStatus overrides the default success status.
func WithStatus(status Status) RecordOption {
	return func(rec *Record) {
		rec.Status = status
	}
}

// WithError records an error message and marks the record failed.
func WithError(err error) RecordOption {
	return func(rec *Record) {
		if err != nil {
			rec.Error = err.Error()
			rec.Status = StatusFailure
		}
	}
}

// LogAction records an action from inside a handler, for enrichment the
// interceptor cannot provide (imports, exports, bulk results). Status
// defaults to success; delivery shares the interceptor's deferred path.
func (d *Dispatcher) LogAction(r *http.Request, action Action, opts ...RecordOption) error {
	rec := baseRecord(r, action)
	rec.Status = StatusSuccess

	if p, ok := principal.FromContext(r.Context()); ok && !p.IsZero() {
		rec.Principal = &Principal{UserID: p.UserID, UserEmail: p.UserEmail, OrgID: p.OrgID}
	}

	for _, opt := range opts {
		opt(&rec)
	}

	return d.Enqueue(rec)
}

// LogSecurityEvent records a security signal (failed login, rate limit
// overrun, blocked IP). Status is forced to warning and no principal is
// attached — security events frequently precede authentication.
func (d *Dispatcher) LogSecurityEvent(r *http.Request, action Action, metadata map[string]any) error {
	rec := baseRecord(r, action)
	rec.Status = StatusWarning
	rec.Metadata = metadata

	return d.Enqueue(rec)
}

func baseRecord(r *http.Request, action Action) Record {
	return Record{
		ID:     uuid.New().String(),
		Action: action,
		Resource: Resource{
			Type: action.ResourceType(),
		},
		Request: RequestInfo{
			Method:    r.Method,
			Path:      r.URL.Path,
			IP:        clientip.GetIP(r),
			UserAgent: r.UserAgent(),
		},
	}
}
