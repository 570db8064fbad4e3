package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct{}

func (stubStore) InitializeObjectDatabase(ctx context.Context) error { return nil }
func (stubStore) DestroyObjectDatabase(ctx context.Context) error    { return nil }
func (stubStore) Get(ctx context.Context, key []string, opts ItemOptions) (Record, bool, error) {
	return nil, false, nil
}
func (stubStore) Put(ctx context.Context, key []string, value Record, opts ItemOptions) error {
	return nil
}
func (stubStore) GetItem(ctx context.Context, className, key string, opts ItemOptions) (*StoredItem, error) {
	return nil, nil
}
func (stubStore) GetItems(ctx context.Context, className string, keys []string, opts ItemOptions) ([]*StoredItem, error) {
	return nil, nil
}
func (stubStore) PutItem(ctx context.Context, classNames []string, key string, value Record, opts ItemOptions) error {
	return nil
}
func (stubStore) DeleteItem(ctx context.Context, className, key string, opts ItemOptions) (bool, error) {
	return false, nil
}
func (stubStore) FindItems(ctx context.Context, className string, opts QueryOptions) ([]*StoredItem, error) {
	return nil, nil
}
func (stubStore) CountItems(ctx context.Context, className string, opts QueryOptions) (int, error) {
	return 0, nil
}
func (stubStore) ForEachItems(ctx context.Context, className string, opts QueryOptions, handler ItemHandler) error {
	return nil
}
func (stubStore) Transaction(ctx context.Context, fn func(ctx context.Context, tr Store) error) error {
	return fn(ctx, stubStore{})
}
func (stubStore) LockDatabase(ctx context.Context) error   { return nil }
func (stubStore) UnlockDatabase(ctx context.Context) error { return nil }
func (stubStore) Subscribe(listener EventListener)         {}

func TestRegisterAndOpen(t *testing.T) {
	Register("stub-test", func(url string) (Store, error) { return stubStore{}, nil })

	s, err := Open("stub-test", "stub://anything")
	require.NoError(t, err)
	assert.IsType(t, stubStore{}, s)
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("no-such-scheme", "whatever")
	assert.Error(t, err)
}
