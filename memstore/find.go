package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/SharedCode/objrepo/objectstore"
)

// matchQuery reports whether value satisfies every field:expected equality
// pair in query.
func matchQuery(value objectstore.Record, query map[string]any) bool {
	for field, expected := range query {
		actual, ok := value[field]
		if !ok || !reflect.DeepEqual(actual, expected) {
			return false
		}
	}
	return true
}

// inKeyRange reports whether key falls within the opts' Start/End/StartAfter/EndBefore
// bounds, each compared as strings against the primary key.
func inKeyRange(key string, opts objectstore.QueryOptions) bool {
	if opts.Start != nil {
		if s, ok := opts.Start.(string); ok && key < s {
			return false
		}
	}
	if opts.StartAfter != nil {
		if s, ok := opts.StartAfter.(string); ok && key <= s {
			return false
		}
	}
	if opts.End != nil {
		if s, ok := opts.End.(string); ok && key > s {
			return false
		}
	}
	if opts.EndBefore != nil {
		if s, ok := opts.EndBefore.(string); ok && key >= s {
			return false
		}
	}
	return true
}

// orderFields normalizes opts.Order (a string or []string) to a field list.
func orderFields(order any) []string {
	switch o := order.(type) {
	case nil:
		return nil
	case string:
		if o == "" {
			return nil
		}
		return []string{o}
	case []string:
		return o
	}
	return nil
}

// candidateKeysLocked returns the key set selectLocked should scan: the full,
// sorted key set of className, unless opts.Query pins an equality value on a
// field className declared an index on, in which case only the (already
// sorted) keys the index has for that value are considered. remaining is
// opts.Query with the consumed field removed, since the index lookup already
// accounts for it.
func (s *Store) candidateKeysLocked(className string, cls map[string]*record, opts objectstore.QueryOptions) (keys []string, remaining map[string]any) {
	if len(opts.Query) == 0 {
		return sortedKeys(cls), nil
	}
	for _, field := range s.indexedFields[className] {
		expected, ok := opts.Query[field]
		if !ok {
			continue
		}
		byValue := s.byIndex[className][field]
		keys := append([]string(nil), byValue[expected]...)
		remaining := make(map[string]any, len(opts.Query)-1)
		for k, v := range opts.Query {
			if k != field {
				remaining[k] = v
			}
		}
		return keys, remaining
	}
	return sortedKeys(cls), opts.Query
}

// selectLocked gathers, filters, orders, and bounds className's records under
// the store's lock, returning the matching records in final order.
func (s *Store) selectLocked(className string, opts objectstore.QueryOptions) ([]*record, error) {
	cls := s.byCls[className]
	keys, remainingQuery := s.candidateKeysLocked(className, cls, opts)

	matched := make([]*record, 0, len(keys))
	for _, k := range keys {
		if !inKeyRange(k, opts) {
			continue
		}
		r := cls[k]
		if len(remainingQuery) > 0 && !matchQuery(r.value, remainingQuery) {
			continue
		}
		matched = append(matched, r)
	}

	if fields := orderFields(opts.Order); len(fields) > 0 {
		ev, err := newOrderEvaluator(orderExpression(fields))
		if err != nil {
			return nil, err
		}
		var sortErr error
		sort.SliceStable(matched, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			c, err := ev.compare(matched[i].value, matched[j].value)
			if err != nil {
				sortErr = err
				return false
			}
			return c < 0
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}

	if opts.Reverse {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (s *Store) FindItems(ctx context.Context, className string, opts objectstore.QueryOptions) ([]*objectstore.StoredItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched, err := s.selectLocked(className, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*objectstore.StoredItem, 0, len(matched))
	for _, r := range matched {
		out = append(out, &objectstore.StoredItem{Classes: append([]string(nil), r.classes...), Value: cloneRecord(r.value)})
	}
	return out, nil
}

func (s *Store) CountItems(ctx context.Context, className string, opts objectstore.QueryOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched, err := s.selectLocked(className, opts)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// ForEachItems streams matched records to handler one at a time, awaiting
// each call before continuing. The store's lock is held
// only while snapshotting the match set, not across handler invocations, so a
// slow or reentrant handler cannot deadlock other store operations.
func (s *Store) ForEachItems(ctx context.Context, className string, opts objectstore.QueryOptions, handler objectstore.ItemHandler) error {
	s.mu.Lock()
	matched, err := s.selectLocked(className, opts)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, r := range matched {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := objectstore.StoredItem{Classes: append([]string(nil), r.classes...), Value: cloneRecord(r.value)}
		if err := handler(ctx, item); err != nil {
			return fmt.Errorf("memstore: handler error: %w", err)
		}
	}
	return nil
}
