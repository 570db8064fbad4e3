package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharedCode/objrepo/objectstore"
)

func seedPeople(t *testing.T, ctx context.Context, s objectstore.Store) {
	t.Helper()
	people := []struct {
		id      string
		country string
		num     int
	}{
		{"bbb", "USA", 3246},
		{"ddd", "USA", 888},
		{"eee", "France", 55498},
	}
	for _, p := range people {
		rec := objectstore.Record{"country": p.country, "accountNumber": p.num}
		require.NoError(t, s.PutItem(ctx, []string{"People", "Accounts"}, p.id, rec, objectstore.DefaultItemOptions()))
	}
}

func TestFindItemsOrderedByField(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPeople(t, ctx, s)

	items, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Order: "accountNumber"})
	require.NoError(t, err)
	require.Len(t, items, 3)

	var nums []any
	for _, it := range items {
		nums = append(nums, it.Value["accountNumber"])
	}
	assert.Equal(t, []any{888, 3246, 55498}, nums)
}

func TestFindItemsReverse(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPeople(t, ctx, s)

	items, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Order: "accountNumber", Reverse: true})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 55498, items[0].Value["accountNumber"])
}

func TestFindItemsQueryFilter(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPeople(t, ctx, s)

	items, err := s.FindItems(ctx, "Accounts", objectstore.QueryOptions{Query: map[string]any{"country": "USA"}})
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestFindItemsLimit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPeople(t, ctx, s)

	items, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Order: "accountNumber", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCountItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPeople(t, ctx, s)

	n, err := s.CountItems(ctx, "People", objectstore.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestForEachItemsStopsOnHandlerError(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedPeople(t, ctx, s)

	seen := 0
	err := s.ForEachItems(ctx, "People", objectstore.QueryOptions{Order: "accountNumber"}, func(ctx context.Context, item objectstore.StoredItem) error {
		seen++
		if seen == 2 {
			return assert.AnError
		}
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 2, seen)
}

func TestFindItemsUsesRegisteredIndex(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.RegisterClass("People", []string{"country"})
	seedPeople(t, ctx, s)

	items, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Query: map[string]any{"country": "USA"}})
	require.NoError(t, err)
	var ids []any
	for _, it := range items {
		ids = append(ids, it.Value["accountNumber"])
	}
	assert.ElementsMatch(t, []any{3246, 888}, ids)

	none, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Query: map[string]any{"country": "Germany"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindItemsIndexFollowsUpdatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.RegisterClass("People", []string{"country"})
	seedPeople(t, ctx, s)

	// bbb moves from USA to France; the index must stop returning it under USA
	// and start returning it under France.
	require.NoError(t, s.PutItem(ctx, []string{"People", "Accounts"}, "bbb", objectstore.Record{"country": "France", "accountNumber": 3246}, objectstore.DefaultItemOptions()))

	usa, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Query: map[string]any{"country": "USA"}})
	require.NoError(t, err)
	require.Len(t, usa, 1)
	assert.Equal(t, 888, usa[0].Value["accountNumber"])

	france, err := s.FindItems(ctx, "People", objectstore.QueryOptions{Query: map[string]any{"country": "France"}})
	require.NoError(t, err)
	require.Len(t, france, 2)

	deleted, err := s.DeleteItem(ctx, "People", "ddd", objectstore.ItemOptions{ErrorIfMissing: true})
	require.NoError(t, err)
	assert.True(t, deleted)

	usa, err = s.FindItems(ctx, "People", objectstore.QueryOptions{Query: map[string]any{"country": "USA"}})
	require.NoError(t, err)
	assert.Empty(t, usa)
}

func TestMatchQueryRequiresAllFields(t *testing.T) {
	value := objectstore.Record{"country": "USA", "active": true}
	assert.True(t, matchQuery(value, map[string]any{"country": "USA", "active": true}))
	assert.False(t, matchQuery(value, map[string]any{"country": "USA", "active": false}))
	assert.False(t, matchQuery(value, map[string]any{"missing": 1}))
}
