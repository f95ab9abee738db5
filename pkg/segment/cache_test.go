package segment_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/postlane/postlane/pkg/segment"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByID(ctx context.Context, orgID, id string) (*segment.Segment, error) {
	args := m.Called(ctx, orgID, id)
	if s, ok := args.Get(0).(*segment.Segment); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateCache(ctx context.Context, id string, cache segment.CacheInfo) error {
	return m.Called(ctx, id, cache).Error(0)
}

func (m *mockStore) FindStale(ctx context.Context, limit int64) ([]segment.Segment, error) {
	args := m.Called(ctx, limit)
	if s, ok := args.Get(0).([]segment.Segment); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockContacts struct {
	mock.Mock
}

func (m *mockContacts) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContacts) Find(ctx context.Context, filter bson.M, limit int64) ([]segment.Contact, error) {
	args := m.Called(ctx, filter, limit)
	if c, ok := args.Get(0).([]segment.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContacts) FindIDs(ctx context.Context, filter bson.M, limit int64) ([]string, error) {
	args := m.Called(ctx, filter, limit)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func testSegment(id string) *segment.Segment {
	return &segment.Segment{
		ID:           id,
		OrgID:        "org-1",
		Name:         "engaged",
		Type:         segment.TypeDynamic,
		Status:       segment.StatusActive,
		RootOperator: segment.OperatorAnd,
		ConditionGroups: []segment.ConditionGroup{{
			Operator: segment.OperatorAnd,
			Conditions: []segment.Condition{{
				Field:    "engagement.score",
				Operator: segment.OpGreaterThanOrEqual,
				Value:    float64(70),
			}},
		}},
	}
}

func TestManager_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("writes count, sample and freshness in one update", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		contacts.On("Count", mock.Anything, mock.Anything).Return(int64(42), nil)
		contacts.On("FindIDs", mock.Anything, mock.Anything, int64(10)).Return([]string{"c1", "c2"}, nil)
		store.On("UpdateCache", mock.Anything, "seg-1", mock.MatchedBy(func(c segment.CacheInfo) bool {
			return c.ContactCount == 42 &&
				!c.IsStale &&
				len(c.SampleIDs) == 2 &&
				time.Since(c.LastCalculatedAt) < time.Minute
		})).Return(nil)

		cache, err := mgr.Refresh(context.Background(), testSegment("seg-1"))
		require.NoError(t, err)
		assert.EqualValues(t, 42, cache.ContactCount)
		assert.False(t, cache.IsStale)
		assert.Equal(t, []string{"c1", "c2"}, cache.SampleIDs)
		store.AssertExpectations(t)
		contacts.AssertExpectations(t)
	})

	t.Run("count failure leaves the cache untouched", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		contacts.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("down"))

		_, err := mgr.Refresh(context.Background(), testSegment("seg-1"))
		require.Error(t, err)
		store.AssertNotCalled(t, "UpdateCache", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("broken definition surfaces the compile error", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		seg := testSegment("seg-1")
		seg.ConditionGroups[0].Conditions[0] = segment.Condition{
			Field:    "createdAt",
			Operator: segment.OpBefore,
			Value:    "not-a-date",
		}
		_, err := mgr.Refresh(context.Background(), seg)
		require.ErrorIs(t, err, segment.ErrInvalidDate)
		contacts.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
	})
}

func TestManager_CountAndPreview(t *testing.T) {
	t.Parallel()

	t.Run("count evaluates live without writing", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		contacts.On("Count", mock.Anything, mock.Anything).Return(int64(7), nil)

		n, err := mgr.Count(context.Background(), testSegment("seg-1"))
		require.NoError(t, err)
		assert.EqualValues(t, 7, n)
		store.AssertNotCalled(t, "UpdateCache", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("preview passes the limit through", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		want := []segment.Contact{{ID: "c1", Email: "a@b.co"}}
		contacts.On("Find", mock.Anything, mock.Anything, int64(25)).Return(want, nil)

		got, err := mgr.Preview(context.Background(), testSegment("seg-1"), 25)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestManager_RefreshStale(t *testing.T) {
	t.Parallel()

	t.Run("one broken segment does not stop the cycle", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		bad := *testSegment("seg-bad")
		bad.ConditionGroups = []segment.ConditionGroup{{
			Operator: segment.OperatorAnd,
			Conditions: []segment.Condition{
				{Field: "createdAt", Operator: segment.OpAfter, Value: "junk"},
			},
		}}
		good := *testSegment("seg-good")

		store.On("FindStale", mock.Anything, int64(50)).Return([]segment.Segment{bad, good}, nil)
		contacts.On("Count", mock.Anything, mock.Anything).Return(int64(3), nil)
		contacts.On("FindIDs", mock.Anything, mock.Anything, int64(10)).Return([]string{"c1"}, nil)
		store.On("UpdateCache", mock.Anything, "seg-good", mock.Anything).Return(nil)

		n, err := mgr.RefreshStale(context.Background(), 50)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		store.AssertNotCalled(t, "UpdateCache", mock.Anything, "seg-bad", mock.Anything)
	})

	t.Run("listing failure aborts", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		contacts := new(mockContacts)
		mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

		store.On("FindStale", mock.Anything, int64(10)).Return(nil, errors.New("down"))

		_, err := mgr.RefreshStale(context.Background(), 10)
		require.Error(t, err)
	})
}

func TestManager_RefreshByID(t *testing.T) {
	t.Parallel()

	store := new(mockStore)
	contacts := new(mockContacts)
	mgr := segment.NewManager(store, contacts, slog.New(slog.DiscardHandler))

	store.On("GetByID", mock.Anything, "org-1", "seg-1").Return(testSegment("seg-1"), nil)
	contacts.On("Count", mock.Anything, mock.Anything).Return(int64(5), nil)
	contacts.On("FindIDs", mock.Anything, mock.Anything, int64(10)).Return([]string{"c1"}, nil)
	store.On("UpdateCache", mock.Anything, "seg-1", mock.Anything).Return(nil)

	cache, err := mgr.RefreshByID(context.Background(), "org-1", "seg-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, cache.ContactCount)

	store.On("GetByID", mock.Anything, "org-1", "missing").Return(nil, segment.ErrNotFound)
	_, err = mgr.RefreshByID(context.Background(), "org-1", "missing")
	require.ErrorIs(t, err, segment.ErrNotFound)
}
