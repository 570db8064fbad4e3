// Package objectstore defines the narrow interface the repository core consumes
// from a lower-level object database. It never ships a
// production backend itself; package memstore provides the reference, in-memory
// implementation used for tests and small deployments.
package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is the sentinel a Store implementation must return (wrapped or
// bare, so errors.Is sees it) when a get/delete targets an absent key and the
// caller asked to be told about it. Any other error a Store call returns is
// assumed unrelated to absence, regardless of the ItemOptions passed in.
var ErrNotFound = errors.New("objectstore: not found")

// ErrAlreadyExists is the sentinel a Store implementation must return when a
// put targets an existing key under ErrorIfExists.
var ErrAlreadyExists = errors.New("objectstore: already exists")

// Record is the opaque, JSON-shaped value an item serializes to.
type Record = map[string]any

// StoredItem is what the backing store returns for a key: the class chain
// (most-derived first) the item was stored under, and its opaque value.
// Classes is never empty; ancestor order is stable.
type StoredItem struct {
	Classes []string
	Value   Record
}

// ItemOptions governs a single get/put/delete call.
type ItemOptions struct {
	// ErrorIfMissing, when true (the default), makes Get/Delete fail with NotFound
	// instead of returning an absent result.
	ErrorIfMissing bool
	// ErrorIfExists, when true, makes Put fail with AlreadyExists instead of
	// overwriting. Forced true by the repository when the item isNew.
	ErrorIfExists bool
	// CreateIfMissing controls whether Put may create a new record. The
	// RepositoryRecord codec sets this to the negation of ErrorIfExists.
	CreateIfMissing bool
}

// DefaultItemOptions returns the conventional defaults: errorIfMissing=true,
// errorIfExists=false, createIfMissing=true.
func DefaultItemOptions() ItemOptions {
	return ItemOptions{ErrorIfMissing: true, CreateIfMissing: true}
}

// QueryOptions governs findItems/countItems/forEachItems/findAndDeleteItems.
// Semantics are entirely the backing store's; the core passes these through
// verbatim.
type QueryOptions struct {
	Start      any
	End        any
	StartAfter any
	EndBefore  any
	// Order is a field name or a slice of field names to sort by.
	Order any
	// Query is an equality-only filter: field name -> expected value.
	Query map[string]any
	Limit int
	// Reverse iterates descending when true.
	Reverse bool
	// BatchSize hints how many records the store should fetch per round-trip.
	BatchSize int
}

// ItemHandler is invoked once per record during ForEachItems. The store must
// await its return before requesting the next record.
type ItemHandler func(ctx context.Context, item StoredItem) error

// EventKind enumerates the events a Store forwards to the EventBridge.
type EventKind int

const (
	UpgradeDidStart EventKind = iota
	UpgradeDidStop
	MigrationDidStart
	MigrationDidStop
)

// EventListener receives store-level lifecycle events.
type EventListener func(EventKind)

// Store is the capability the repository core consumes from the backing object
// database. Implementations must serialize mutations through Transaction's own
// discipline; the core adds no locking beyond LockDatabase/UnlockDatabase
// around upgrades.
type Store interface {
	// InitializeObjectDatabase prepares backend structures (tables, folders, …).
	InitializeObjectDatabase(ctx context.Context) error
	// DestroyObjectDatabase tears down everything InitializeObjectDatabase created.
	DestroyObjectDatabase(ctx context.Context) error

	// Get fetches the singleton/raw record at key. found is false when absent and
	// opts.ErrorIfMissing is false; when absent and opts.ErrorIfMissing is true,
	// err wraps ErrNotFound. Any other err means something other than absence
	// went wrong.
	Get(ctx context.Context, key []string, opts ItemOptions) (record Record, found bool, err error)
	// Put writes the raw record at key. When the key already exists and
	// opts.ErrorIfExists is true, err wraps ErrAlreadyExists.
	Put(ctx context.Context, key []string, value Record, opts ItemOptions) error

	// GetItem fetches one item of className by key. item is nil when absent and
	// opts.ErrorIfMissing is false; when absent and opts.ErrorIfMissing is true,
	// err wraps ErrNotFound.
	GetItem(ctx context.Context, className, key string, opts ItemOptions) (item *StoredItem, err error)
	// GetItems fetches many items of className by key, preserving input order;
	// a nil entry marks a missing key when opts.ErrorIfMissing is false.
	GetItems(ctx context.Context, className string, keys []string, opts ItemOptions) ([]*StoredItem, error)
	// PutItem writes an item's value under key, tagged with classNames
	// (most-derived first) so base-class lookups can find it too. When the key
	// already exists and opts.ErrorIfExists is true, err wraps ErrAlreadyExists.
	PutItem(ctx context.Context, classNames []string, key string, value Record, opts ItemOptions) error
	// DeleteItem removes className's record at key. hasBeenDeleted is false when
	// the key was absent and opts.ErrorIfMissing is false; when absent and
	// opts.ErrorIfMissing is true, err wraps ErrNotFound.
	DeleteItem(ctx context.Context, className, key string, opts ItemOptions) (hasBeenDeleted bool, err error)

	// FindItems returns items of className matching opts.
	FindItems(ctx context.Context, className string, opts QueryOptions) ([]*StoredItem, error)
	// CountItems counts items of className matching opts.
	CountItems(ctx context.Context, className string, opts QueryOptions) (int, error)
	// ForEachItems streams items of className matching opts to handler, awaiting
	// each call before fetching the next record.
	ForEachItems(ctx context.Context, className string, opts QueryOptions, handler ItemHandler) error

	// Transaction runs fn against a transactional Store handle. The backend
	// commits on success and aborts (rolling back all writes) if fn returns an
	// error or the context is cancelled.
	Transaction(ctx context.Context, fn func(ctx context.Context, tr Store) error) error

	// LockDatabase/UnlockDatabase provide the database-wide lock used around
	// upgradeRepository. Implementations may no-op for a
	// single-process backend.
	LockDatabase(ctx context.Context) error
	UnlockDatabase(ctx context.Context) error

	// Subscribe registers a listener for store-level lifecycle events,
	// forwarded verbatim by the repository's EventBridge.
	Subscribe(listener EventListener)

	// RegisterClass declares className's secondary-index fields before any
	// item of that class is written. A backend that can exploit equality
	// lookups on indexedFields (memstore does) uses this to avoid a full
	// scan in FindItems/CountItems/ForEachItems; a backend that can't just
	// ignores the call. Safe to call more than once for the same class.
	RegisterClass(className string, indexedFields []string)
}
