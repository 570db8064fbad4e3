// Package rediscache decorates an objectstore.Store with an optional Redis
// L2 cache for the repository record and single-item gets. It is opt-in
// infrastructure: a Repository works perfectly well without it, and uses it
// only when the store passed to objrepo.New is one returned by Wrap.
package rediscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SharedCode/objrepo/objectstore"
)

// Options configures the Redis connection this decorator uses.
type Options struct {
	Address  string
	Password string
	DB       int
	// TTL bounds how long a cached entry survives before it's treated as stale.
	TTL time.Duration
}

// DefaultOptions returns a localhost, no-auth, 30s-TTL configuration.
func DefaultOptions() Options {
	return Options{Address: "localhost:6379", DB: 0, TTL: 30 * time.Second}
}

// Store decorates an objectstore.Store with a read-through/write-invalidate
// Redis cache for Get and GetItem. Put, PutItem and DeleteItem delete the
// affected cache entries before delegating; all other methods pass through
// unchanged.
type Store struct {
	objectstore.Store
	client *redis.Client
	ttl    time.Duration
}

// Wrap returns a Store that caches backend's single-record reads in Redis.
func Wrap(backend objectstore.Store, opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Store{Store: backend, client: client, ttl: ttl}
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func rawKey(key []string) string {
	return "objrepo:kv:" + strings.Join(key, "\x00")
}

func itemKey(className, key string) string {
	return "objrepo:item:" + className + "\x00" + key
}

// Get checks Redis first; on a miss it delegates to the backend and
// populates the cache with the result.
func (s *Store) Get(ctx context.Context, key []string, opts objectstore.ItemOptions) (objectstore.Record, bool, error) {
	ck := rawKey(key)
	if cached, ok := s.readCache(ctx, ck); ok {
		slog.Debug("rediscache: hit", "key", ck)
		return cached, true, nil
	}
	rec, found, err := s.Store.Get(ctx, key, opts)
	if err != nil || !found {
		return rec, found, err
	}
	s.writeCache(ctx, ck, rec)
	return rec, found, nil
}

// Put invalidates the cache entry for key before delegating to the backend.
func (s *Store) Put(ctx context.Context, key []string, value objectstore.Record, opts objectstore.ItemOptions) error {
	s.client.Del(ctx, rawKey(key))
	return s.Store.Put(ctx, key, value, opts)
}

// GetItem checks Redis first, keyed by class+primary key, before delegating.
func (s *Store) GetItem(ctx context.Context, className, key string, opts objectstore.ItemOptions) (*objectstore.StoredItem, error) {
	ck := itemKey(className, key)
	if cached, ok := s.readItemCache(ctx, ck); ok {
		slog.Debug("rediscache: item hit", "key", ck)
		return cached, nil
	}
	item, err := s.Store.GetItem(ctx, className, key, opts)
	if err != nil || item == nil {
		return item, err
	}
	s.writeItemCache(ctx, ck, item)
	return item, nil
}

// PutItem invalidates the cached entry for every class the item is tagged
// with, since cross-class queries can observe it under any of them.
func (s *Store) PutItem(ctx context.Context, classNames []string, key string, value objectstore.Record, opts objectstore.ItemOptions) error {
	for _, cls := range classNames {
		s.client.Del(ctx, itemKey(cls, key))
	}
	return s.Store.PutItem(ctx, classNames, key, value, opts)
}

// DeleteItem invalidates the cached entry before delegating.
func (s *Store) DeleteItem(ctx context.Context, className, key string, opts objectstore.ItemOptions) (bool, error) {
	s.client.Del(ctx, itemKey(className, key))
	return s.Store.DeleteItem(ctx, className, key, opts)
}

func (s *Store) readCache(ctx context.Context, key string) (objectstore.Record, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rec objectstore.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return rec, true
}

func (s *Store) writeCache(ctx context.Context, key string, rec objectstore.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.client.Set(ctx, key, data, s.ttl)
}

func (s *Store) readItemCache(ctx context.Context, key string) (*objectstore.StoredItem, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var item objectstore.StoredItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, false
	}
	return &item, true
}

func (s *Store) writeItemCache(ctx context.Context, key string, item *objectstore.StoredItem) {
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	s.client.Set(ctx, key, data, s.ttl)
}
