package objrepo

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/SharedCode/objrepo/objectstore"
)

// ItemOptions governs a single getItem/putItem/deleteItem call. It is a type
// alias so callers never need to import objectstore directly.
type ItemOptions = objectstore.ItemOptions

// QueryOptions governs findItems/countItems/forEachItems/findAndDeleteItems.
type QueryOptions = objectstore.QueryOptions

// DefaultItemOptions returns the conventional defaults: errorIfMissing=true,
// errorIfExists=false, createIfMissing=true.
func DefaultItemOptions() ItemOptions {
	return objectstore.DefaultItemOptions()
}

// respire yields cooperatively every RespirationRate items processed by a
// bulk operation. On Go's preemptive scheduler this is a batching
// checkpoint rather than a strict necessity; it keeps the same behavioral
// contract testable by counting Gosched calls.
func (r *Repository) respire(count int) {
	rate := r.config.RespirationRate
	if rate <= 0 {
		rate = DefaultRespirationRate
	}
	if count > 0 && count%rate == 0 {
		slog.Debug("objrepo: respiration yield", "count", count)
		runtime.Gosched()
		respirationCount.Add(1)
	}
}

// wrapItemError turns a store error into a typed NotFound when the store
// itself signaled absence (objectstore.ErrNotFound), or a generic StoreError
// for anything else. The caller's ItemOptions play no part in this: they
// tell the store whether to treat a miss as an error in the first place,
// not how to classify an error the store actually returned.
func wrapItemError(err error, userData any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, objectstore.ErrNotFound) {
		return newError(NotFound, err, userData)
	}
	return newError(StoreError, err)
}

// wrapPutError turns a store error into a typed AlreadyExists when the store
// itself signaled a conflict (objectstore.ErrAlreadyExists), or a generic
// StoreError for anything else.
func wrapPutError(err error, userData any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, objectstore.ErrAlreadyExists) {
		return newError(AlreadyExists, err, userData)
	}
	return newError(StoreError, err)
}

// GetItem fetches item's record by its class and primary key and materializes
// it at its true, possibly more-derived, class.
func (r *Repository) GetItem(ctx context.Context, item Item, opts ItemOptions) (Item, error) {
	if err := r.initialize(ctx); err != nil {
		return nil, err
	}
	className := item.Class().Name
	key := item.PrimaryKeyValue()

	result, err := r.store.GetItem(ctx, className, key, opts)
	if err != nil {
		return nil, wrapItemError(err, key)
	}
	if result == nil {
		return nil, nil
	}
	if len(result.Classes) > 0 && result.Classes[0] == className {
		if err := item.ReplaceValue(result.Value); err != nil {
			return nil, newError(StoreError, err)
		}
		return item, nil
	}
	derived, err := r.registry.newItem(result.Classes[0], result.Value)
	if err != nil {
		return nil, err
	}
	return derived, nil
}

// PutItem writes item, forcing errorIfExists when the item has never been put
// before, then emits DidPutItem.
func (r *Repository) PutItem(ctx context.Context, item Item, opts ItemOptions) error {
	if err := r.initialize(ctx); err != nil {
		return err
	}
	classNames := item.ClassNames()
	if len(classNames) == 0 {
		classNames = []string{item.Class().Name}
	}
	if item.IsNew() {
		opts.ErrorIfExists = true
	}
	value, err := item.Serialize()
	if err != nil {
		return newError(StoreError, err)
	}
	if err := r.store.PutItem(ctx, classNames, item.PrimaryKeyValue(), value, opts); err != nil {
		return wrapPutError(err, item.PrimaryKeyValue())
	}
	r.events.emit(Event{Kind: DidPutItem, ClassName: item.Class().Name, Item: item})
	return nil
}

// DeleteItem deletes item by its class and primary key, emitting DidDeleteItem
// only when a record actually existed to remove.
func (r *Repository) DeleteItem(ctx context.Context, item Item, opts ItemOptions) (bool, error) {
	if err := r.initialize(ctx); err != nil {
		return false, err
	}
	className := item.Class().Name
	key := item.PrimaryKeyValue()
	deleted, err := r.store.DeleteItem(ctx, className, key, opts)
	if err != nil {
		return false, wrapItemError(err, key)
	}
	if deleted {
		r.events.emit(Event{Kind: DidDeleteItem, ClassName: className, Item: item})
	}
	return deleted, nil
}

// GetItems bulk-fetches items sharing items[0]'s class, respiring every
// RespirationRate records, and materializes each result at its true class
// via a per-call classCache.
func (r *Repository) GetItems(ctx context.Context, items []Item, opts ItemOptions) ([]Item, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := r.initialize(ctx); err != nil {
		return nil, err
	}
	className := items[0].Class().Name
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.PrimaryKeyValue()
	}

	results, err := r.store.GetItems(ctx, className, keys, opts)
	if err != nil {
		return nil, wrapItemError(err, className)
	}

	cache := newClassCache(r.registry)
	out := make([]Item, len(results))
	for i, res := range results {
		if res == nil {
			continue
		}
		derivedClass := className
		if len(res.Classes) > 0 {
			derivedClass = res.Classes[0]
		}
		materialized, err := cache.materialize(derivedClass, res.Value)
		if err != nil {
			return nil, err
		}
		out[i] = materialized
		r.respire(i + 1)
	}
	return out, nil
}

// FindItems delegates to the store with opts passed through verbatim, then
// materializes each result at its true class.
func (r *Repository) FindItems(ctx context.Context, coll *Collection, opts QueryOptions) ([]Item, error) {
	if err := r.initialize(ctx); err != nil {
		return nil, err
	}
	results, err := r.store.FindItems(ctx, coll.class.Name, opts)
	if err != nil {
		return nil, newError(StoreError, err)
	}
	cache := newClassCache(r.registry)
	out := make([]Item, 0, len(results))
	for i, res := range results {
		materialized, err := cache.materialize(res.Classes[0], res.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, materialized)
		r.respire(i + 1)
	}
	return out, nil
}

// CountItems is a pure pass-through to the store.
func (r *Repository) CountItems(ctx context.Context, coll *Collection, opts QueryOptions) (int, error) {
	if err := r.initialize(ctx); err != nil {
		return 0, err
	}
	n, err := r.store.CountItems(ctx, coll.class.Name, opts)
	if err != nil {
		return 0, newError(StoreError, err)
	}
	return n, nil
}

// ForEachItems streams matching items to fn, awaiting each call before the
// store fetches the next record, giving natural backpressure.
func (r *Repository) ForEachItems(ctx context.Context, coll *Collection, opts QueryOptions, fn func(ctx context.Context, item Item) error) error {
	if err := r.initialize(ctx); err != nil {
		return err
	}
	cache := newClassCache(r.registry)
	count := 0
	return r.store.ForEachItems(ctx, coll.class.Name, opts, func(ctx context.Context, si objectstore.StoredItem) error {
		materialized, err := cache.materialize(si.Classes[0], si.Value)
		if err != nil {
			return err
		}
		if err := fn(ctx, materialized); err != nil {
			return newError(UserError, err)
		}
		count++
		r.respire(count)
		return nil
	})
}

// FindAndDeleteItems deletes every item matching opts, built on top of
// ForEachItems; each delete is its own store operation and NotFound is
// suppressed per item, so the count reflects items that still existed at
// delete time.
func (r *Repository) FindAndDeleteItems(ctx context.Context, coll *Collection, opts QueryOptions) (int, error) {
	count := 0
	err := r.ForEachItems(ctx, coll, opts, func(ctx context.Context, item Item) error {
		deleted, err := r.DeleteItem(ctx, item, ItemOptions{ErrorIfMissing: false})
		if err != nil {
			return err
		}
		if deleted {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}
