package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/postlane/postlane/pkg/audit"
)

// AuditReader serves audit queries. *audit.Reader is the production
// implementation.
type AuditReader interface {
	ListForOrg(ctx context.Context, orgID string, opts audit.ListOptions) (*audit.ListResult, error)
	RecentSecurityEvents(ctx context.Context, hours, limit int) ([]audit.Record, error)
}

// AuditHandler serves the audit trail read endpoints.
type AuditHandler struct {
	reader AuditReader
	log    *slog.Logger
}

// NewAuditHandler creates the handler over a configured reader.
func NewAuditHandler(reader AuditReader, log *slog.Logger) *AuditHandler {
	if reader == nil {
		panic("api: audit reader cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuditHandler{reader: reader, log: log}
}

// List handles GET /api/orgs/{orgID}/audit-logs with page, limit, action,
// userId, from and to query parameters. Dates accept RFC 3339 or plain
// YYYY-MM-DD.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	opts := audit.ListOptions{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Action: audit.Action(r.URL.Query().Get("action")),
		UserID: r.URL.Query().Get("userId"),
	}

	var ok bool
	if opts.StartDate, ok = queryTime(r, "from"); !ok {
		badRequest(w, "invalid from date")
		return
	}
	if opts.EndDate, ok = queryTime(r, "to"); !ok {
		badRequest(w, "invalid to date")
		return
	}

	result, err := h.reader.ListForOrg(r.Context(), orgID, opts)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SecurityEvents handles GET /api/orgs/{orgID}/security-events with hours
// and limit query parameters.
func (h *AuditHandler) SecurityEvents(w http.ResponseWriter, r *http.Request) {
	hours := int(queryInt(r, "hours"))
	limit := int(queryInt(r, "limit"))

	events, err := h.reader.RecentSecurityEvents(r.Context(), hours, limit)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": events})
}

func queryInt(r *http.Request, name string) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func queryTime(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if at, err := time.Parse(layout, raw); err == nil {
			return at, true
		}
	}
	return time.Time{}, false
}
