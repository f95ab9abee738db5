package audit

import (
	"fmt"
	"time"
)

// Status represents the outcome of an audited action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	// StatusWarning is reserved for security events.
	StatusWarning Status = "warning"
)

// StatusFromCode maps an HTTP status code to an audit status.
// Success iff the response code is below 400.
func StatusFromCode(code int) Status {
	if code < 400 {
		return StatusSuccess
	}
	return StatusFailure
}

// Principal identifies the authenticated actor. All fields may be empty:
// security events and pre-auth failures carry no actor.
type Principal struct {
	UserID    string `bson:"userId,omitempty" json:"userId,omitempty"`
	UserEmail string `bson:"userEmail,omitempty" json:"userEmail,omitempty"`
	OrgID     string `bson:"orgId,omitempty" json:"orgId,omitempty"`
}

// Resource names the entity an action touched.
type Resource struct {
	Type string `bson:"type" json:"type"`
	ID   string `bson:"id,omitempty" json:"id,omitempty"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// RequestInfo captures the HTTP request that triggered the action.
type RequestInfo struct {
	Method    string `bson:"method" json:"method"`
	Path      string `bson:"path" json:"path"`
	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

// Changes holds optional before/after payload snapshots. After is always
// sanitized before persistence; see Sanitize.
type Changes struct {
	Before map[string]any `bson:"before,omitempty" json:"before,omitempty"`
	After  map[string]any `bson:"after,omitempty" json:"after,omitempty"`
}

// Record is a single append-only audit trail entry. Records are never
// mutated after insertion and expire through a TTL index on CreatedAt.
type Record struct {
	ID        string         `bson:"_id" json:"id"`
	Principal *Principal     `bson:"principal,omitempty" json:"principal,omitempty"`
	Action    Action         `bson:"action" json:"action"`
	Resource  Resource       `bson:"resource" json:"resource"`
	Request   RequestInfo    `bson:"request" json:"request"`
	Changes   *Changes       `bson:"changes,omitempty" json:"changes,omitempty"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Status    Status         `bson:"status" json:"status"`
	Error     string         `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// Validate checks that the record carries the required fields.
func (r *Record) Validate() error {
	if r.Action == "" {
		return fmt.Errorf("%w: action is required", ErrRecordValidation)
	}
	return nil
}
