package objrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/SharedCode/objrepo/objectstore"
)

// VERSION is the current RepositoryRecord format. A persisted version greater
// than this is a downgrade attempt and is always fatal.
const VERSION = 1

// recordKeyName is the second segment of the singleton repository record's key.
const recordKeyName = "$Repository"

// RepositoryRecord is the persisted singleton metadata record, stored under
// [repository.name, "$Repository"].
type RepositoryRecord struct {
	Name    string
	Version int
	ID      string
}

func (r RepositoryRecord) toRecord() objectstore.Record {
	return objectstore.Record{
		"name":    r.Name,
		"version": r.Version,
		"id":      r.ID,
	}
}

func repositoryRecordFromRecord(rec objectstore.Record) (RepositoryRecord, error) {
	var out RepositoryRecord
	name, ok := rec["name"].(string)
	if !ok {
		return out, fmt.Errorf("$Repository record missing string field \"name\"")
	}
	id, ok := rec["id"].(string)
	if !ok {
		return out, fmt.Errorf("$Repository record missing string field \"id\"")
	}
	version, err := toInt(rec["version"])
	if err != nil {
		return out, fmt.Errorf("$Repository record field \"version\": %w", err)
	}
	out.Name = name
	out.ID = id
	out.Version = version
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// loadRepositoryRecord fetches the singleton record at [name, "$Repository"].
func loadRepositoryRecord(ctx context.Context, store objectstore.Store, name string, errorIfMissing bool) (*RepositoryRecord, error) {
	rec, found, err := store.Get(ctx, []string{name, recordKeyName}, objectstore.ItemOptions{ErrorIfMissing: errorIfMissing})
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, newError(NotFound, err, name)
		}
		return nil, newError(StoreError, err)
	}
	if !found {
		return nil, nil
	}
	parsed, err := repositoryRecordFromRecord(rec)
	if err != nil {
		return nil, newError(StoreError, err)
	}
	return &parsed, nil
}

// saveRepositoryRecord writes the singleton record at [name, "$Repository"].
func saveRepositoryRecord(ctx context.Context, store objectstore.Store, record RepositoryRecord, errorIfExists bool) error {
	opts := objectstore.ItemOptions{ErrorIfExists: errorIfExists, CreateIfMissing: !errorIfExists}
	if err := store.Put(ctx, []string{record.Name, recordKeyName}, record.toRecord(), opts); err != nil {
		if errors.Is(err, objectstore.ErrAlreadyExists) {
			return newError(AlreadyExists, err, record.Name)
		}
		return newError(StoreError, err)
	}
	return nil
}
