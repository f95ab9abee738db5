package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultRoutes)

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()
		action, params, ok := c.Classify("POST", "/api/auth/login")
		assert.True(t, ok)
		assert.Equal(t, ActionLogin, action)
		assert.Empty(t, params)
	})

	t.Run("parametric match captures id", func(t *testing.T) {
		t.Parallel()
		action, params, ok := c.Classify("DELETE", "/api/contacts/507f1f77bcf86cd799439011")
		assert.True(t, ok)
		assert.Equal(t, ActionContactDelete, action)
		assert.Equal(t, "507f1f77bcf86cd799439011", params["id"])
	})

	t.Run("placeholder value does not affect the action", func(t *testing.T) {
		t.Parallel()
		a1, _, ok1 := c.Classify("PUT", "/api/contacts/abc")
		a2, _, ok2 := c.Classify("PUT", "/api/contacts/xyz")
		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.Equal(t, a1, a2)
	})

	t.Run("declaration order wins over placeholders", func(t *testing.T) {
		t.Parallel()
		// /api/contacts/import is declared before /api/contacts/:id would
		// ever see it, and exact entries are checked first anyway.
		action, _, ok := c.Classify("POST", "/api/contacts/import")
		assert.True(t, ok)
		assert.Equal(t, ActionContactImport, action)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		_, _, ok := c.Classify("POST", "/api/unknown")
		assert.False(t, ok)
	})

	t.Run("method is significant", func(t *testing.T) {
		t.Parallel()
		_, _, ok := c.Classify("GET", "/api/auth/login")
		assert.False(t, ok)
	})

	t.Run("trailing slash is significant", func(t *testing.T) {
		t.Parallel()
		_, _, ok := c.Classify("POST", "/api/auth/login/")
		assert.False(t, ok)
	})

	t.Run("segment count must match", func(t *testing.T) {
		t.Parallel()
		_, _, ok := c.Classify("DELETE", "/api/contacts/a/b")
		assert.False(t, ok)
	})

	t.Run("placeholder rejects empty segment", func(t *testing.T) {
		t.Parallel()
		_, _, ok := c.Classify("DELETE", "/api/contacts/")
		assert.False(t, ok)
	})
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	t.Parallel()

	c := NewClassifier([]Route{
		{"POST", "/api/things/:id", ActionOther},
		{"POST", "/api/:resource/:id", ActionSettingsUpdate},
	})

	action, _, ok := c.Classify("POST", "/api/things/42")
	assert.True(t, ok)
	assert.Equal(t, ActionOther, action)
}

func TestAction_ResourceType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action Action
		want   string
	}{
		{ActionContactImport, "contact"},
		{ActionCampaignSend, "campaign"},
		{ActionTemplateDelete, "template"},
		{ActionAutomationPause, "automation"},
		{ActionUserInvite, "user"},
		{ActionAdminOrgSuspend, "organization"},
		{ActionSubscriptionCancel, "subscription"},
		{ActionLogin, "other"},
		{ActionRateLimitExceeded, "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.action.ResourceType(), "action %s", tt.action)
	}
}

func TestAction_IsMutation(t *testing.T) {
	t.Parallel()

	assert.True(t, ActionContactCreate.IsMutation())
	assert.True(t, ActionCampaignUpdate.IsMutation())
	assert.False(t, ActionContactDelete.IsMutation())
	assert.False(t, ActionLogin.IsMutation())
}
