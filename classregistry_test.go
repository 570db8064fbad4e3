package objrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassRegistryLookupUnknown(t *testing.T) {
	reg := NewClassRegistry()
	_, err := reg.lookup("Widgets")
	assert.True(t, hasCode(err, UnknownClass))
}

func TestClassRegistryNewItem(t *testing.T) {
	reg := NewClassRegistry()
	reg.Register(CollectionClass{Name: "Accounts"}, func(record Record) (Item, error) {
		return &mapItem{className: "Accounts", idField: "id", values: record}, nil
	})

	item, err := reg.newItem("Accounts", Record{"id": "aaa"})
	assert.NoError(t, err)
	assert.Equal(t, "aaa", item.PrimaryKeyValue())
}

func TestClassCacheMemoises(t *testing.T) {
	reg := NewClassRegistry()
	calls := 0
	reg.Register(CollectionClass{Name: "Accounts"}, func(record Record) (Item, error) {
		calls++
		return &mapItem{className: "Accounts", idField: "id", values: record}, nil
	})

	cache := newClassCache(reg)
	_, err := cache.materialize("Accounts", Record{"id": "a1"})
	assert.NoError(t, err)
	_, err = cache.materialize("Accounts", Record{"id": "a2"})
	assert.NoError(t, err)

	// The factory itself runs once per materialize call; only the registry
	// lookup is memoised.
	assert.Equal(t, 2, calls)
}
