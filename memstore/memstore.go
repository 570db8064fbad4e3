// Package memstore is a reference, in-memory implementation of
// objectstore.Store. It exists to demonstrate the shape an ObjectStore
// backend takes and to back tests; it is not a production storage engine.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/SharedCode/objrepo/objectstore"
)

type record struct {
	classes []string
	value   objectstore.Record
}

func cloneRecord(v objectstore.Record) objectstore.Record {
	out := make(objectstore.Record, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Store is a single-process, mutex-guarded in-memory ObjectStore.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	dbMu  sync.Mutex
	byKV  map[string]objectstore.Record // the raw k/v store backing RepositoryRecord etc.
	byCls map[string]map[string]*record // className -> key -> record

	indexedFields map[string][]string                    // className -> declared index fields
	byIndex       map[string]map[string]map[any][]string // className -> field -> value -> keys, ascending

	listeners []objectstore.EventListener
}

// New creates an empty Store. url is accepted for symmetry with
// objectstore.Factory/Register but is unused since memstore has no real
// connection to open.
func New(url string) (objectstore.Store, error) {
	return &Store{
		byKV:          make(map[string]objectstore.Record),
		byCls:         make(map[string]map[string]*record),
		indexedFields: make(map[string][]string),
		byIndex:       make(map[string]map[string]map[any][]string),
	}, nil
}

func init() {
	objectstore.Register("memstore", New)
}

func (s *Store) InitializeObjectDatabase(ctx context.Context) error {
	slog.Debug("memstore: initialized")
	return nil
}

func (s *Store) DestroyObjectDatabase(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKV = make(map[string]objectstore.Record)
	s.byCls = make(map[string]map[string]*record)
	return nil
}

func rawKey(key []string) string {
	s := ""
	for i, k := range key {
		if i > 0 {
			s += "\x00"
		}
		s += k
	}
	return s
}

func (s *Store) Get(ctx context.Context, key []string, opts objectstore.ItemOptions) (objectstore.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byKV[rawKey(key)]
	if !ok {
		if opts.ErrorIfMissing {
			return nil, false, fmt.Errorf("memstore: key %v: %w", key, objectstore.ErrNotFound)
		}
		return nil, false, nil
	}
	return cloneRecord(v), true, nil
}

func (s *Store) Put(ctx context.Context, key []string, value objectstore.Record, opts objectstore.ItemOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := rawKey(key)
	_, exists := s.byKV[k]
	if exists && opts.ErrorIfExists {
		return fmt.Errorf("memstore: key %v: %w", key, objectstore.ErrAlreadyExists)
	}
	if !exists && !opts.CreateIfMissing && !opts.ErrorIfExists {
		return fmt.Errorf("memstore: key %v: %w", key, objectstore.ErrNotFound)
	}
	s.byKV[k] = cloneRecord(value)
	return nil
}

func (s *Store) GetItem(ctx context.Context, className, key string, opts objectstore.ItemOptions) (*objectstore.StoredItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getItemLocked(className, key, opts)
}

func (s *Store) getItemLocked(className, key string, opts objectstore.ItemOptions) (*objectstore.StoredItem, error) {
	cls, ok := s.byCls[className]
	if !ok {
		if opts.ErrorIfMissing {
			return nil, fmt.Errorf("memstore: item %s/%s: %w", className, key, objectstore.ErrNotFound)
		}
		return nil, nil
	}
	r, ok := cls[key]
	if !ok {
		if opts.ErrorIfMissing {
			return nil, fmt.Errorf("memstore: item %s/%s: %w", className, key, objectstore.ErrNotFound)
		}
		return nil, nil
	}
	return &objectstore.StoredItem{Classes: append([]string(nil), r.classes...), Value: cloneRecord(r.value)}, nil
}

func (s *Store) GetItems(ctx context.Context, className string, keys []string, opts objectstore.ItemOptions) ([]*objectstore.StoredItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*objectstore.StoredItem, 0, len(keys))
	for _, k := range keys {
		item, err := s.getItemLocked(className, k, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// PutItem writes value under key, indexed under every class in classNames so
// base-class queries find it too.
func (s *Store) PutItem(ctx context.Context, classNames []string, key string, value objectstore.Record, opts objectstore.ItemOptions) error {
	if len(classNames) == 0 {
		return fmt.Errorf("memstore: classNames must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	derived := classNames[0]
	existing, hasExisting := s.byCls[derived][key]
	if hasExisting && opts.ErrorIfExists {
		return fmt.Errorf("memstore: item %s/%s: %w", derived, key, objectstore.ErrAlreadyExists)
	}
	if !hasExisting && existing == nil && !opts.CreateIfMissing && !opts.ErrorIfExists {
		return fmt.Errorf("memstore: item %s/%s: %w", derived, key, objectstore.ErrNotFound)
	}

	r := &record{classes: append([]string(nil), classNames...), value: cloneRecord(value)}
	for _, cls := range classNames {
		if s.byCls[cls] == nil {
			s.byCls[cls] = make(map[string]*record)
		}
		if old, ok := s.byCls[cls][key]; ok {
			s.indexRemoveLocked(cls, key, old)
		}
		s.byCls[cls][key] = r
		s.indexInsertLocked(cls, key, r)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, className, key string, opts objectstore.ItemOptions) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cls, ok := s.byCls[className]
	if !ok {
		if opts.ErrorIfMissing {
			return false, fmt.Errorf("memstore: item %s/%s: %w", className, key, objectstore.ErrNotFound)
		}
		return false, nil
	}
	r, ok := cls[key]
	if !ok {
		if opts.ErrorIfMissing {
			return false, fmt.Errorf("memstore: item %s/%s: %w", className, key, objectstore.ErrNotFound)
		}
		return false, nil
	}
	for _, c := range r.classes {
		delete(s.byCls[c], key)
		s.indexRemoveLocked(c, key, r)
	}
	return true, nil
}

func (s *Store) LockDatabase(ctx context.Context) error {
	s.dbMu.Lock()
	return nil
}

func (s *Store) UnlockDatabase(ctx context.Context) error {
	s.dbMu.Unlock()
	return nil
}

func (s *Store) Subscribe(listener objectstore.EventListener) {
	s.listeners = append(s.listeners, listener)
}

// RegisterClass declares className's indexed fields. FindItems/CountItems/
// ForEachItems consult this to serve an equality lookup on an indexed field
// from the index instead of scanning every record of the class.
func (s *Store) RegisterClass(className string, indexedFields []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexedFields[className] = append([]string(nil), indexedFields...)
}

// indexInsertLocked adds key to className's index entries for r.value, for
// every field className declares an index on.
func (s *Store) indexInsertLocked(className, key string, r *record) {
	for _, field := range s.indexedFields[className] {
		v, ok := r.value[field]
		if !ok {
			continue
		}
		if s.byIndex[className] == nil {
			s.byIndex[className] = make(map[string]map[any][]string)
		}
		byValue := s.byIndex[className][field]
		if byValue == nil {
			byValue = make(map[any][]string)
			s.byIndex[className][field] = byValue
		}
		keys := byValue[v]
		i := sort.SearchStrings(keys, key)
		keys = append(keys, "")
		copy(keys[i+1:], keys[i:])
		keys[i] = key
		byValue[v] = keys
	}
}

// indexRemoveLocked removes key from className's index entries for r.value.
func (s *Store) indexRemoveLocked(className, key string, r *record) {
	for _, field := range s.indexedFields[className] {
		v, ok := r.value[field]
		if !ok {
			continue
		}
		byValue := s.byIndex[className][field]
		keys := byValue[v]
		i := sort.SearchStrings(keys, key)
		if i < len(keys) && keys[i] == key {
			keys = append(keys[:i], keys[i+1:]...)
		}
		if len(keys) == 0 {
			delete(byValue, v)
		} else {
			byValue[v] = keys
		}
	}
}

func (s *Store) emit(kind objectstore.EventKind) {
	for _, l := range s.listeners {
		l(kind)
	}
}

// Transaction snapshots the store, runs fn, and restores the snapshot if fn
// errors or ctx is done when fn returns, a copy-on-write rollback appropriate for a reference in-memory
// backend. txMu serializes whole transactions; individual operations inside
// fn still go through Get/Put/etc. and take mu briefly, so there's no
// deadlock between the two locks.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tr objectstore.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.restore(snapshot)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type snapshotState struct {
	byKV  map[string]objectstore.Record
	byCls map[string]map[string]*record
}

func (s *Store) snapshot() snapshotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	kv := make(map[string]objectstore.Record, len(s.byKV))
	for k, v := range s.byKV {
		kv[k] = cloneRecord(v)
	}
	cls := make(map[string]map[string]*record, len(s.byCls))
	for c, m := range s.byCls {
		cm := make(map[string]*record, len(m))
		for k, r := range m {
			cm[k] = &record{classes: append([]string(nil), r.classes...), value: cloneRecord(r.value)}
		}
		cls[c] = cm
	}
	return snapshotState{byKV: kv, byCls: cls}
}

func (s *Store) restore(snap snapshotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKV = snap.byKV
	s.byCls = snap.byCls
	// Rebuild the secondary indexes from the restored records.
	s.byIndex = make(map[string]map[string]map[any][]string)
	for cls, m := range s.byCls {
		for k, r := range m {
			s.indexInsertLocked(cls, k, r)
		}
	}
}

// sortedKeys returns the keys of m sorted ascending, used as the fallback
// ordering (by primary key) when opts.Order is unset.
func sortedKeys(m map[string]*record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
