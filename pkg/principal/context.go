package principal

import "context"

// Principal is the authenticated actor bound to a request by the auth layer.
// Any field may be empty: security events and unauthenticated webhooks
// legitimately produce records without an actor.
type Principal struct {
	UserID    string
	UserEmail string
	OrgID     string
}

// IsZero reports whether no actor information is present.
func (p Principal) IsZero() bool {
	return p.UserID == "" && p.UserEmail == "" && p.OrgID == ""
}

type contextKey struct{}

// WithContext binds the principal to the context. The auth middleware is the
// only expected caller.
func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal bound to the context, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
