package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlane/postlane/pkg/segment"
)

func TestTemplates(t *testing.T) {
	t.Parallel()

	t.Run("every built-in template compiles", func(t *testing.T) {
		t.Parallel()

		for _, tpl := range segment.Templates() {
			seg := segment.FromTemplate(tpl, "org-1", tpl.Name)
			_, err := segment.BuildQuery(seg)
			require.NoError(t, err, "template %s", tpl.Name)
		}
	})

	t.Run("lookup by name", func(t *testing.T) {
		t.Parallel()

		tpl, ok := segment.TemplateByName(segment.TemplateHighlyEngaged)
		require.True(t, ok)
		require.Len(t, tpl.Groups, 1)
		require.Len(t, tpl.Groups[0].Conditions, 1)
		cond := tpl.Groups[0].Conditions[0]
		assert.Equal(t, "engagement.score", cond.Field)
		assert.Equal(t, segment.OpGreaterThanOrEqual, cond.Operator)
		assert.Equal(t, float64(70), cond.Value)

		_, ok = segment.TemplateByName("NOT_A_TEMPLATE")
		assert.False(t, ok)
	})

	t.Run("instantiation produces an active dynamic segment", func(t *testing.T) {
		t.Parallel()

		tpl, _ := segment.TemplateByName(segment.TemplateNewSubscribers)
		seg := segment.FromTemplate(tpl, "org-9", "fresh faces")

		assert.Equal(t, "org-9", seg.OrgID)
		assert.Equal(t, "fresh faces", seg.Name)
		assert.Equal(t, segment.TypeDynamic, seg.Type)
		assert.Equal(t, segment.StatusActive, seg.Status)
		assert.Empty(t, seg.ID, "persistence assigns the id")
	})
}
