package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postlane/postlane/pkg/segment"
)

// previewLimit caps how many contacts a preview returns.
const previewLimit = 25

// SegmentStore is the persistence surface the handler needs.
// *segment.Store is the production implementation.
type SegmentStore interface {
	List(ctx context.Context, orgID string, status segment.Status) ([]segment.Segment, error)
	Create(ctx context.Context, seg *segment.Segment) error
	GetByID(ctx context.Context, orgID, id string) (*segment.Segment, error)
	Update(ctx context.Context, orgID, id string, u segment.Update) (*segment.Segment, error)
	Delete(ctx context.Context, orgID, id string) error
}

// SegmentEvaluator runs segments against the contact base.
// *segment.Manager is the production implementation.
type SegmentEvaluator interface {
	Count(ctx context.Context, seg *segment.Segment) (int64, error)
	Preview(ctx context.Context, seg *segment.Segment, limit int64) ([]segment.Contact, error)
	RefreshByID(ctx context.Context, orgID, id string) (segment.CacheInfo, error)
}

// SegmentHandler serves segment CRUD and evaluation endpoints. All routes
// are org-scoped through the orgID URL parameter.
type SegmentHandler struct {
	store   SegmentStore
	manager SegmentEvaluator
	log     *slog.Logger
}

// NewSegmentHandler creates the handler.
func NewSegmentHandler(store SegmentStore, manager SegmentEvaluator, log *slog.Logger) *SegmentHandler {
	if store == nil {
		panic("api: segment store cannot be nil")
	}
	if manager == nil {
		panic("api: segment manager cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SegmentHandler{store: store, manager: manager, log: log}
}

// segmentRequest is the create/update payload.
type segmentRequest struct {
	Name            string                   `json:"name"`
	Type            segment.Type             `json:"type"`
	Status          segment.Status           `json:"status"`
	RootOperator    segment.BoolOperator     `json:"rootOperator"`
	ConditionGroups []segment.ConditionGroup `json:"conditionGroups"`
	StaticMembers   *segment.StaticMembers   `json:"staticMembers"`
	BaseFilter      *segment.BaseFilter      `json:"baseFilter"`
	Template        string                   `json:"template"`
}

// List handles GET /api/orgs/{orgID}/segments.
func (h *SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	status := segment.Status(r.URL.Query().Get("status"))
	segments, err := h.store.List(r.Context(), chi.URLParam(r, "orgID"), status)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

// Create handles POST /api/orgs/{orgID}/segments. A request naming a
// template instantiates it; otherwise the payload defines the segment.
func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed segment payload")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	orgID := chi.URLParam(r, "orgID")
	var seg *segment.Segment
	if req.Template != "" {
		tpl, ok := segment.TemplateByName(req.Template)
		if !ok {
			badRequest(w, "unknown template")
			return
		}
		seg = segment.FromTemplate(tpl, orgID, req.Name)
	} else {
		seg = &segment.Segment{
			OrgID:           orgID,
			Name:            req.Name,
			Type:            req.Type,
			RootOperator:    req.RootOperator,
			ConditionGroups: req.ConditionGroups,
		}
		if req.StaticMembers != nil {
			seg.StaticMembers = *req.StaticMembers
		}
		if req.BaseFilter != nil {
			seg.BaseFilter = *req.BaseFilter
		}
	}

	// Reject definitions that cannot compile before persisting them.
	if _, err := segment.BuildQuery(seg); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.store.Create(r.Context(), seg); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, seg)
}

// Get handles GET /api/orgs/{orgID}/segments/{id}.
func (h *SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	seg, err := h.store.GetByID(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, seg)
}

// Update handles PUT /api/orgs/{orgID}/segments/{id}.
func (h *SegmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "malformed segment payload")
		return
	}

	upd := segment.Update{
		ConditionGroups: req.ConditionGroups,
		StaticMembers:   req.StaticMembers,
		BaseFilter:      req.BaseFilter,
	}
	if req.Name != "" {
		upd.Name = &req.Name
	}
	if req.RootOperator != "" {
		upd.RootOperator = &req.RootOperator
	}
	if req.Status == segment.StatusActive || req.Status == segment.StatusArchived {
		upd.Status = &req.Status
	}

	seg, err := h.store.Update(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "id"), upd)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, seg)
}

// Delete handles DELETE /api/orgs/{orgID}/segments/{id}.
func (h *SegmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Count handles GET /api/orgs/{orgID}/segments/{id}/count: a live
// evaluation alongside the cached value.
func (h *SegmentHandler) Count(w http.ResponseWriter, r *http.Request) {
	seg, err := h.store.GetByID(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	n, err := h.manager.Count(r.Context(), seg)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count": n,
		"cache": seg.Cache,
	})
}

// Preview handles GET /api/orgs/{orgID}/segments/{id}/preview.
func (h *SegmentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	seg, err := h.store.GetByID(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	limit := queryInt(r, "limit")
	if limit <= 0 || limit > previewLimit {
		limit = previewLimit
	}
	contacts, err := h.manager.Preview(r.Context(), seg, limit)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// Refresh handles POST /api/orgs/{orgID}/segments/{id}/refresh: a
// synchronous cache recalculation for callers who need freshness now.
func (h *SegmentHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cache, err := h.manager.RefreshByID(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, cache)
}

// Templates handles GET /api/segment-templates.
func (h *SegmentHandler) Templates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"templates": segment.Templates()})
}
