package audit

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlane/postlane/pkg/principal"
)

func TestDispatcher_LogAction(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	d := NewDispatcher(sink, slog.New(slog.DiscardHandler), DispatcherOptions{})
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	r := httptest.NewRequest("POST", "/api/contacts/import", nil)
	r = r.WithContext(principal.WithContext(r.Context(), principal.Principal{UserID: "u1", OrgID: "o1"}))

	err := d.LogAction(r, ActionContactImport,
		WithResource("contact", "c-9"),
		WithResourceName("import batch"),
		WithMetadata("rows", 120),
		WithChanges(nil, map[string]any{"password": "x", "source": "csv"}),
	)
	require.NoError(t, err)

	recs := sink.waitFor(t, 1)
	rec := recs[0]
	assert.Equal(t, ActionContactImport, rec.Action)
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Equal(t, "contact", rec.Resource.Type)
	assert.Equal(t, "c-9", rec.Resource.ID)
	assert.Equal(t, "import batch", rec.Resource.Name)
	assert.Equal(t, 120, rec.Metadata["rows"])
	require.NotNil(t, rec.Principal)
	assert.Equal(t, "o1", rec.Principal.OrgID)
	require.NotNil(t, rec.Changes)
	assert.Equal(t, Redacted, rec.Changes.After["password"])
	assert.Equal(t, "csv", rec.Changes.After["source"])
}

func TestDispatcher_LogAction_WithError(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	d := NewDispatcher(sink, slog.New(slog.DiscardHandler), DispatcherOptions{})
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	r := httptest.NewRequest("POST", "/api/campaigns/1/send", nil)
	require.NoError(t, d.LogAction(r, ActionCampaignSend, WithError(errors.New("provider down"))))

	recs := sink.waitFor(t, 1)
	assert.Equal(t, StatusFailure, recs[0].Status)
	assert.Equal(t, "provider down", recs[0].Error)
}

func TestDispatcher_LogSecurityEvent(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	d := NewDispatcher(sink, slog.New(slog.DiscardHandler), DispatcherOptions{})
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	// A principal in context must not leak into security events.
	r = r.WithContext(principal.WithContext(r.Context(), principal.Principal{UserID: "u1"}))
	r.Header.Set("X-Forwarded-For", "203.0.113.5")

	require.NoError(t, d.LogSecurityEvent(r, ActionRateLimitExceeded, map[string]any{"limit": 100}))

	recs := sink.waitFor(t, 1)
	rec := recs[0]
	assert.Equal(t, ActionRateLimitExceeded, rec.Action)
	assert.Equal(t, StatusWarning, rec.Status)
	assert.Nil(t, rec.Principal)
	assert.Equal(t, 100, rec.Metadata["limit"])
	assert.Equal(t, "203.0.113.5", rec.Request.IP)
}
