package objrepo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SharedCode/objrepo/objectstore"
)

// DefaultRespirationRate is how many items a bulk operation processes before
// yielding cooperatively to the scheduler.
const DefaultRespirationRate = 250

// repoState holds the mutable flags and cached values shared between a root
// Repository and every TransactionalView derived from it.
type repoState struct {
	mu                 sync.Mutex
	hasBeenInitialized bool
	isInitializing     bool
	repositoryID       string
}

// Repository is a local, typed, polymorphic object repository layered over an
// objectstore.Store. Construct one with New; derive transactional views with
// Transaction.
type Repository struct {
	name     string
	url      string
	config   Configuration
	registry *ClassRegistry
	events   *eventBridge

	// store is this handle's object database handle: the root's own handle, or
	// a transactional handle on a TransactionalView.
	store objectstore.Store

	// state is shared by identity (pointer) between a root Repository and every
	// view derived from it.
	state *repoState

	// rootPtr identifies the root Repository object. IsInsideTransaction is
	// defined as identity inequality against rootPtr: a view's address
	// is never equal to its root's.
	rootPtr *Repository
}

// New constructs a repository bound to store under name, with the given
// collection classes registered. url is retained only as metadata; the actual connection is store's concern.
func New(name, url string, store objectstore.Store, registry *ClassRegistry, config Configuration) *Repository {
	if config.RespirationRate == 0 {
		config.RespirationRate = DefaultRespirationRate
	}
	r := &Repository{
		name:     name,
		url:      url,
		config:   config,
		registry: registry,
		events:   newEventBridge(),
		store:    store,
		state:    &repoState{},
	}
	r.rootPtr = r
	store.Subscribe(r.onStoreEvent)
	return r
}

// Subscribe registers fn to receive all lifecycle and item events emitted by
// this repository (and any of its transactional views, since they share the
// same event bus).
func (r *Repository) Subscribe(fn Subscriber) {
	r.events.Subscribe(fn)
}

func (r *Repository) onStoreEvent(kind objectstore.EventKind) {
	var mapped EventKind
	switch kind {
	case objectstore.UpgradeDidStart:
		mapped = UpgradeDidStart
	case objectstore.UpgradeDidStop:
		mapped = UpgradeDidStop
	case objectstore.MigrationDidStart:
		mapped = MigrationDidStart
	case objectstore.MigrationDidStop:
		mapped = MigrationDidStop
	default:
		return
	}
	r.events.emit(Event{Kind: mapped})
}

// IsInsideTransaction reports whether r is a transactional view rather than
// the repository root. Identity inequality with rootPtr is the sole test;
// a view's address is never equal to its root's.
func (r *Repository) IsInsideTransaction() bool {
	return r != r.rootPtr
}

// CreateCollection returns a handle bound to the registered class name. It
// fails with UnknownClass if name was never registered.
func (r *Repository) CreateCollection(name string) (*Collection, error) {
	entry, err := r.registry.lookup(name)
	if err != nil {
		return nil, err
	}
	if len(entry.class.Indexes) > 0 {
		r.store.RegisterClass(entry.class.Name, entry.class.Indexes)
	}
	return &Collection{repo: r, class: entry.class}, nil
}

// GetRepositoryId returns the persisted repository record's 16-char opaque
// id, memoising it after the first successful read.
func (r *Repository) GetRepositoryId(ctx context.Context) (string, error) {
	if err := r.initialize(ctx); err != nil {
		return "", err
	}
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if r.state.repositoryID != "" {
		return r.state.repositoryID, nil
	}
	rec, err := loadRepositoryRecord(ctx, r.rootPtr.store, r.name, true)
	if err != nil {
		return "", err
	}
	r.state.repositoryID = rec.ID
	return rec.ID, nil
}

// ---- Lifecycle ----

// initialize is idempotent and re-entrancy-safe. It must be called before any
// PolymorphicOps operation touches the store.
func (r *Repository) initialize(ctx context.Context) error {
	r.state.mu.Lock()
	if r.state.hasBeenInitialized {
		r.state.mu.Unlock()
		return nil
	}
	if r.state.isInitializing {
		// Another call is already initializing (e.g. a DidCreate subscriber
		// re-entering the repository); treat as a silent success.
		r.state.mu.Unlock()
		return nil
	}
	if r.IsInsideTransaction() {
		r.state.mu.Unlock()
		return newError(InitInsideTransaction, fmt.Errorf("initialize() called from inside a transaction"))
	}
	r.state.isInitializing = true
	r.state.mu.Unlock()

	defer func() {
		r.state.mu.Lock()
		r.state.isInitializing = false
		r.state.mu.Unlock()
	}()

	store := r.rootPtr.store
	if err := store.InitializeObjectDatabase(ctx); err != nil {
		return newError(StoreError, err)
	}

	created, err := r.createRepositoryIfDoesNotExist(ctx, store)
	if err != nil {
		return err
	}
	if !created {
		if err := store.LockDatabase(ctx); err != nil {
			return newError(StoreError, err)
		}
		upgradeErr := r.upgradeRepository(ctx, store)
		if unlockErr := store.UnlockDatabase(ctx); unlockErr != nil && upgradeErr == nil {
			upgradeErr = newError(StoreError, unlockErr)
		}
		if upgradeErr != nil {
			return upgradeErr
		}
	}

	r.state.mu.Lock()
	r.state.hasBeenInitialized = true
	r.state.mu.Unlock()

	slog.Info("objrepo: repository initialized", "name", r.name)
	r.events.emit(Event{Kind: DidInitialize})
	return nil
}

// createRepositoryIfDoesNotExist opens a store-level transaction, loads the
// $Repository record, and creates it if absent.
func (r *Repository) createRepositoryIfDoesNotExist(ctx context.Context, store objectstore.Store) (bool, error) {
	var created bool
	err := store.Transaction(ctx, func(ctx context.Context, tr objectstore.Store) error {
		existing, err := loadRepositoryRecord(ctx, tr, r.name, false)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		rec := RepositoryRecord{Name: r.name, Version: VERSION, ID: generateID()}
		if err := saveRepositoryRecord(ctx, tr, rec, true); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		slog.Info("objrepo: repository created", "name", r.name)
		r.events.emit(Event{Kind: DidCreate})
	}
	return created, nil
}

// upgradeRepository is a noop when the persisted version matches VERSION,
// fails CannotDowngrade when the persisted version is newer, and otherwise
// applies stepwise upgrades.
func (r *Repository) upgradeRepository(ctx context.Context, store objectstore.Store) error {
	rec, err := loadRepositoryRecord(ctx, store, r.name, true)
	if err != nil {
		return err
	}
	if rec.Version == VERSION {
		return nil
	}
	if rec.Version > VERSION {
		return newError(CannotDowngrade, fmt.Errorf("persisted version %d is newer than supported version %d", rec.Version, VERSION), r.name)
	}

	r.events.emit(Event{Kind: UpgradeDidStart})
	slog.Info("objrepo: upgrading repository", "name", r.name, "from", rec.Version, "to", VERSION)

	// Reserved slot for stepwise upgrades, e.g.: if rec.Version < 2 {... }

	rec.Version = VERSION
	if err := saveRepositoryRecord(ctx, store, *rec, false); err != nil {
		return err
	}
	slog.Info("objrepo: repository upgraded", "name", r.name, "version", VERSION)
	r.events.emit(Event{Kind: UpgradeDidStop})
	return nil
}

// DestroyRepository tears down the object database and clears cached
// lifecycle state. It does not take the database-wide lock; callers
// must quiesce all other operations before calling it.
func (r *Repository) DestroyRepository(ctx context.Context) error {
	r.events.emit(Event{Kind: WillDestroy})
	if err := r.rootPtr.store.DestroyObjectDatabase(ctx); err != nil {
		return newError(StoreError, err)
	}
	r.state.mu.Lock()
	r.state.hasBeenInitialized = false
	r.state.repositoryID = ""
	r.state.mu.Unlock()
	r.events.emit(Event{Kind: DidDestroy})
	return nil
}

// ---- TransactionScope ----

// Transaction runs fn against a TransactionalView of r. Nested calls (fn
// itself calling Transaction again on the view it was given) are flattened:
// the outermost call owns the store-level transaction and inner calls simply
// invoke fn directly against the same view. The view must not be used after
// Transaction returns: it stays bound to the transaction's store handle, and
// nothing prevents a caller from retaining it.
func (r *Repository) Transaction(ctx context.Context, fn func(ctx context.Context, tx *Repository) error) error {
	if r.IsInsideTransaction() {
		return fn(ctx, r)
	}
	if err := r.initialize(ctx); err != nil {
		return err
	}
	return r.store.Transaction(ctx, func(ctx context.Context, tr objectstore.Store) error {
		view := *r
		view.store = tr
		return fn(ctx, &view)
	})
}
