package objrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SharedCode/objrepo/objectstore"
)

func TestWrapItemErrorClassifiesByStoreSentinel(t *testing.T) {
	notFound := fmt.Errorf("memstore: item Accounts/x: %w", objectstore.ErrNotFound)
	err := wrapItemError(notFound, "x")
	assert.True(t, IsNotFound(err))

	transient := errors.New("dial tcp: connection refused")
	err = wrapItemError(transient, "x")
	assert.False(t, IsNotFound(err))
	assert.True(t, hasCode(err, StoreError))
}

func TestWrapPutErrorClassifiesByStoreSentinel(t *testing.T) {
	conflict := fmt.Errorf("memstore: item Accounts/x: %w", objectstore.ErrAlreadyExists)
	err := wrapPutError(conflict, "x")
	assert.True(t, IsAlreadyExists(err))

	transient := errors.New("dial tcp: connection refused")
	err = wrapPutError(transient, "x")
	assert.False(t, IsAlreadyExists(err))
	assert.True(t, hasCode(err, StoreError))
}
