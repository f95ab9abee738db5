package audit

import (
	"context"
	"time"

	"github.com/postlane/postlane/pkg/cache"
)

// UserInfo is the rendered identity of a principal in audit listings.
type UserInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserResolver resolves a user ID to displayable identity. The user service
// provides the production implementation; the reader treats it as optional.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (UserInfo, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200

	userCacheSize = 512
)

// ListOptions filters an org's audit listing.
type ListOptions struct {
	Page      int64
	Limit     int64
	Action    Action
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// Pagination describes an offset-paginated result set.
type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListEntry is a record with its principal resolved for display.
type ListEntry struct {
	Record
	User *UserInfo `json:"user,omitempty"`
}

// ListResult is a page of audit records.
type ListResult struct {
	Records    []ListEntry `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// RecordSource provides stored audit records. *Store is the production
// implementation.
type RecordSource interface {
	Query(ctx context.Context, c Criteria) ([]Record, error)
	Count(ctx context.Context, c Criteria) (int64, error)
}

// Reader serves audit queries for UI consumers.
type Reader struct {
	store    RecordSource
	resolver UserResolver
	users    *cache.LRU[string, UserInfo]
}

// ReaderOption configures the reader.
type ReaderOption func(*Reader)

// WithUserResolver enables principal resolution in listings. Lookups are
// memoized in an LRU cache so a page of records costs at most a handful of
// user fetches.
func WithUserResolver(resolver UserResolver) ReaderOption {
	return func(r *Reader) {
		r.resolver = resolver
	}
}

// NewReader creates a reader over the audit store.
func NewReader(store RecordSource, opts ...ReaderOption) *Reader {
	if store == nil {
		panic("audit: store cannot be nil")
	}
	r := &Reader{
		store: store,
		users: cache.NewLRU[string, UserInfo](userCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListForOrg returns one page of an organization's audit trail, newest
// first. Page and limit are clamped to the documented bounds (page ≥ 1,
// limit ≤ 200) rather than rejected.
func (r *Reader) ListForOrg(ctx context.Context, orgID string, opts ListOptions) (*ListResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	criteria := Criteria{
		OrgID:     orgID,
		UserID:    opts.UserID,
		Action:    opts.Action,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	records, err := r.store.Query(ctx, criteria)
	if err != nil {
		return nil, err
	}

	total, err := r.store.Count(ctx, criteria)
	if err != nil {
		return nil, err
	}

	entries := make([]ListEntry, len(records))
	for i, rec := range records {
		entries[i] = ListEntry{Record: rec}
		if rec.Principal != nil && rec.Principal.UserID != "" {
			if info, ok := r.resolveUser(ctx, rec.Principal.UserID); ok {
				entries[i].User = &info
			}
		}
	}

	pages := total / limit
	if total%limit > 0 {
		pages++
	}

	return &ListResult{
		Records: entries,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// RecentSecurityEvents returns security-relevant records from the last
// hours (default 24), newest first, capped at limit (default 100).
func (r *Reader) RecentSecurityEvents(ctx context.Context, hours, limit int) ([]Record, error) {
	if hours <= 0 {
		hours = 24
	}
	if limit <= 0 {
		limit = 100
	}

	return r.store.Query(ctx, Criteria{
		Actions:   SecurityActions,
		StartDate: time.Now().Add(-time.Duration(hours) * time.Hour),
		Limit:     int64(limit),
	})
}

func (r *Reader) resolveUser(ctx context.Context, userID string) (UserInfo, bool) {
	if r.resolver == nil {
		return UserInfo{}, false
	}
	if info, ok := r.users.Get(userID); ok {
		return info, true
	}
	info, err := r.resolver.ResolveUser(ctx, userID)
	if err != nil {
		// Listing should render even when the user service hiccups.
		return UserInfo{}, false
	}
	r.users.Put(userID, info)
	return info, true
}
