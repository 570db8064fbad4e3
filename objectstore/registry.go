package objectstore

import (
	"fmt"
	"sync"
)

// Factory builds a Store from an opaque connection URL.
type Factory func(url string) (Store, error)

var (
	mux      sync.Mutex
	registry = make(map[string]Factory)
)

// Register associates scheme (e.g. "memstore", "redis") with a Store factory,
// so the root package never has to import a concrete backend directly.
func Register(scheme string, factory Factory) {
	mux.Lock()
	defer mux.Unlock()
	registry[scheme] = factory
}

// Open builds a Store using the factory registered for scheme, passing url
// through unexamined.
func Open(scheme, url string) (Store, error) {
	mux.Lock()
	factory, ok := registry[scheme]
	mux.Unlock()
	if !ok {
		return nil, fmt.Errorf("objectstore: no backend registered for scheme %q", scheme)
	}
	return factory(url)
}
