package rediscache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SharedCode/objrepo/memstore"
	"github.com/SharedCode/objrepo/objectstore"
)

func TestGetCachesBackendReads(t *testing.T) {
	if os.Getenv("OBJREPO_REDIS_TEST") != "1" {
		t.Skip("skipping Redis integration test; set OBJREPO_REDIS_TEST=1 to run")
	}
	ctx := context.Background()

	backend, err := memstore.New("memstore://cache-test")
	require.NoError(t, err)
	require.NoError(t, backend.Put(ctx, []string{"shop", "$Repository"}, objectstore.Record{"name": "shop"}, objectstore.DefaultItemOptions()))

	cached := Wrap(backend, DefaultOptions())
	defer cached.Close()

	rec, found, err := cached.Get(ctx, []string{"shop", "$Repository"}, objectstore.DefaultItemOptions())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "shop", rec["name"])

	rec2, found2, err := cached.Get(ctx, []string{"shop", "$Repository"}, objectstore.DefaultItemOptions())
	require.NoError(t, err)
	assert.True(t, found2)
	assert.Equal(t, rec, rec2)
}

func TestPutInvalidatesCache(t *testing.T) {
	if os.Getenv("OBJREPO_REDIS_TEST") != "1" {
		t.Skip("skipping Redis integration test; set OBJREPO_REDIS_TEST=1 to run")
	}
	ctx := context.Background()

	backend, err := memstore.New("memstore://cache-test2")
	require.NoError(t, err)
	cached := Wrap(backend, DefaultOptions())
	defer cached.Close()

	key := []string{"shop", "$Repository"}
	require.NoError(t, cached.Put(ctx, key, objectstore.Record{"name": "v1"}, objectstore.DefaultItemOptions()))
	_, _, err = cached.Get(ctx, key, objectstore.DefaultItemOptions())
	require.NoError(t, err)

	require.NoError(t, cached.Put(ctx, key, objectstore.Record{"name": "v2"}, objectstore.DefaultItemOptions()))
	rec, _, err := cached.Get(ctx, key, objectstore.DefaultItemOptions())
	require.NoError(t, err)
	assert.Equal(t, "v2", rec["name"])
}
