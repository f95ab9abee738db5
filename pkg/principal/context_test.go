package principal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postlane/postlane/pkg/principal"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("stores and retrieves principal", func(t *testing.T) {
		t.Parallel()
		p := principal.Principal{UserID: "u1", UserEmail: "u1@example.com", OrgID: "org1"}
		ctx := principal.WithContext(context.Background(), p)

		got, ok := principal.FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, p, got)
	})

	t.Run("missing principal", func(t *testing.T) {
		t.Parallel()
		_, ok := principal.FromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("nil context", func(t *testing.T) {
		t.Parallel()
		_, ok := principal.FromContext(nil) //nolint:staticcheck
		assert.False(t, ok)
	})
}

func TestPrincipal_IsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, principal.Principal{}.IsZero())
	assert.False(t, principal.Principal{OrgID: "org"}.IsZero())
	assert.False(t, principal.Principal{UserID: "u"}.IsZero())
}
