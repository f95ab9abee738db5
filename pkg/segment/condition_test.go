package segment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/postlane/postlane/pkg/segment"
)

// compile runs a single condition through the full query pipeline and
// strips the base filter, leaving just the condition's fragment.
func compile(t *testing.T, c segment.Condition) (bson.M, error) {
	t.Helper()
	seg := &segment.Segment{
		OrgID:        "org-1",
		Type:         segment.TypeDynamic,
		RootOperator: segment.OperatorAnd,
		ConditionGroups: []segment.ConditionGroup{{
			Operator:   segment.OperatorAnd,
			Conditions: []segment.Condition{c},
		}},
	}
	filter, err := segment.BuildQuery(seg)
	if err != nil {
		return nil, err
	}
	and, ok := filter["$and"].([]bson.M)
	require.True(t, ok, "expected a single $and group, got %#v", filter)
	require.Len(t, and, 1)
	return and[0], nil
}

func TestCompileCondition_Comparisons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cond segment.Condition
		want bson.M
	}{
		{
			name: "equals",
			cond: segment.Condition{Field: "email", Operator: segment.OpEquals, Value: "a@b.co"},
			want: bson.M{"email": "a@b.co"},
		},
		{
			name: "not equals",
			cond: segment.Condition{Field: "status", Operator: segment.OpNotEquals, Value: "bounced"},
			want: bson.M{"status": bson.M{"$ne": "bounced"}},
		},
		{
			name: "greater than",
			cond: segment.Condition{Field: "engagement.score", Operator: segment.OpGreaterThan, Value: float64(50)},
			want: bson.M{"engagement.score": bson.M{"$gt": float64(50)}},
		},
		{
			name: "less than or equal",
			cond: segment.Condition{Field: "engagement.score", Operator: segment.OpLessThanOrEqual, Value: float64(10)},
			want: bson.M{"engagement.score": bson.M{"$lte": float64(10)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := compile(t, tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileCondition_StringMatching(t *testing.T) {
	t.Parallel()

	t.Run("contains is case-insensitive", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "email", Operator: segment.OpContains, Value: "acme"})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"email": bson.Regex{Pattern: "acme", Options: "i"}}, got)
	})

	t.Run("regex metacharacters are escaped", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "email", Operator: segment.OpContains, Value: "a.b+c"})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"email": bson.Regex{Pattern: `a\.b\+c`, Options: "i"}}, got)
	})

	t.Run("starts_with anchors at the front", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "firstName", Operator: segment.OpStartsWith, Value: "Jo"})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"firstName": bson.Regex{Pattern: "^Jo", Options: "i"}}, got)
	})

	t.Run("ends_with anchors at the back", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "email", Operator: segment.OpEndsWith, Value: "@acme.io"})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"email": bson.Regex{Pattern: `@acme\.io$`, Options: "i"}}, got)
	})

	t.Run("not_contains negates the regex", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "email", Operator: segment.OpNotContains, Value: "spam"})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"email": bson.M{"$not": bson.Regex{Pattern: "spam", Options: "i"}}}, got)
	})
}

func TestCompileCondition_Emptiness(t *testing.T) {
	t.Parallel()

	t.Run("is_empty matches missing, null and empty string", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "firstName", Operator: segment.OpIsEmpty})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"firstName": bson.M{"$exists": false}},
			{"firstName": nil},
			{"firstName": ""},
		}}, got)
	})

	t.Run("is_not_empty requires a real value", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "firstName", Operator: segment.OpIsNotEmpty})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"firstName": bson.M{
			"$exists": true,
			"$nin":    []any{nil, ""},
		}}, got)
	})
}

func TestCompileCondition_ListMembership(t *testing.T) {
	t.Parallel()

	t.Run("in_list on lists requires an active membership", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{
			Field:    "lists",
			Operator: segment.OpInList,
			Value:    []any{"l1", "l2"},
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"lists": bson.M{"$elemMatch": bson.M{
			"listId": bson.M{"$in": []any{"l1", "l2"}},
			"status": "active",
		}}}, got)
	})

	t.Run("not_in_list on lists negates the whole $elemMatch", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{
			Field:    "lists",
			Operator: segment.OpNotInList,
			Value:    []string{"l1"},
		})
		require.NoError(t, err)
		// $not must wrap an operator expression; a bare document inside it
		// is rejected by the server.
		assert.Equal(t, bson.M{"lists": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"listId": bson.M{"$in": []any{"l1"}},
			"status": "active",
		}}}}, got)
	})

	t.Run("in_list on a plain field is a bare $in", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{
			Field:    "status",
			Operator: segment.OpInList,
			Value:    []any{"subscribed", "pending"},
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"status": bson.M{"$in": []any{"subscribed", "pending"}}}, got)
	})
}

func TestCompileCondition_Dates(t *testing.T) {
	t.Parallel()

	t.Run("before and after parse RFC3339 and plain dates", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{Field: "createdAt", Operator: segment.OpBefore, Value: "2025-06-01"})
		require.NoError(t, err)
		want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, bson.M{"createdAt": bson.M{"$lt": want}}, got)

		got, err = compile(t, segment.Condition{Field: "createdAt", Operator: segment.OpAfter, Value: "2025-06-01T12:30:00Z"})
		require.NoError(t, err)
		want = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
		assert.Equal(t, bson.M{"createdAt": bson.M{"$gt": want}}, got)
	})

	t.Run("between uses both bounds inclusively", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{
			Field:    "createdAt",
			Operator: segment.OpBetween,
			Value:    "2025-01-01",
			ValueEnd: "2025-02-01",
		})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"createdAt": bson.M{
			"$gte": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			"$lte": time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		}}, got)
	})

	t.Run("unparseable date is an error", func(t *testing.T) {
		t.Parallel()

		_, err := compile(t, segment.Condition{Field: "createdAt", Operator: segment.OpBefore, Value: "last tuesday"})
		require.ErrorIs(t, err, segment.ErrInvalidDate)
	})

	t.Run("between with a missing bound is an error", func(t *testing.T) {
		t.Parallel()

		_, err := compile(t, segment.Condition{Field: "createdAt", Operator: segment.OpBetween, Value: "2025-01-01"})
		require.ErrorIs(t, err, segment.ErrInvalidDate)
	})
}

func TestCompileCondition_WithinLast(t *testing.T) {
	t.Parallel()

	cutoffFor := func(t *testing.T, c segment.Condition) time.Time {
		t.Helper()
		got, err := compile(t, c)
		require.NoError(t, err)
		inner, ok := got[c.Field].(bson.M)
		require.True(t, ok)
		at, ok := inner["$gte"].(time.Time)
		require.True(t, ok)
		return at
	}

	t.Run("days is the default unit", func(t *testing.T) {
		t.Parallel()

		at := cutoffFor(t, segment.Condition{Field: "createdAt", Operator: segment.OpWithinLast, Value: float64(7)})
		assert.WithinDuration(t, time.Now().Add(-7*24*time.Hour), at, 2*time.Second)
	})

	t.Run("a month is thirty days", func(t *testing.T) {
		t.Parallel()

		at := cutoffFor(t, segment.Condition{
			Field:    "engagement.lastOpenedAt",
			Operator: segment.OpWithinLast,
			Value:    float64(2),
			Unit:     "months",
		})
		assert.WithinDuration(t, time.Now().Add(-60*24*time.Hour), at, 2*time.Second)
	})

	t.Run("not_within_last flips the comparison", func(t *testing.T) {
		t.Parallel()

		got, err := compile(t, segment.Condition{
			Field:    "engagement.lastOpenedAt",
			Operator: segment.OpNotWithinLast,
			Value:    float64(90),
			Unit:     "days",
		})
		require.NoError(t, err)
		inner := got["engagement.lastOpenedAt"].(bson.M)
		at, ok := inner["$lt"].(time.Time)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), at, 2*time.Second)
	})

	t.Run("non-numeric amount is an error", func(t *testing.T) {
		t.Parallel()

		_, err := compile(t, segment.Condition{Field: "createdAt", Operator: segment.OpWithinLast, Value: "soon"})
		require.ErrorIs(t, err, segment.ErrInvalidValue)
	})

	t.Run("unknown unit is an error", func(t *testing.T) {
		t.Parallel()

		_, err := compile(t, segment.Condition{Field: "createdAt", Operator: segment.OpWithinLast, Value: float64(1), Unit: "fortnights"})
		require.ErrorIs(t, err, segment.ErrInvalidValue)
	})
}

func TestCompileCondition_UnknownOperatorIsNoOp(t *testing.T) {
	t.Parallel()

	seg := &segment.Segment{
		OrgID:        "org-1",
		Type:         segment.TypeDynamic,
		RootOperator: segment.OperatorAnd,
		ConditionGroups: []segment.ConditionGroup{{
			Operator: segment.OperatorAnd,
			Conditions: []segment.Condition{
				{Field: "email", Operator: "sounds_like", Value: "acme"},
			},
		}},
	}
	filter, err := segment.BuildQuery(seg)
	require.NoError(t, err)
	// The unknown operator contributes nothing; only the base filter remains.
	assert.NotContains(t, filter, "$and")
	assert.NotContains(t, filter, "$or")
}
