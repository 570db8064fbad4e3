package objrepo

import "fmt"

// ItemFactory constructs a new Item of a registered class from a deserialized
// record. Used to materialize items returned by the ObjectStore at their
// most-derived class.
type ItemFactory func(record Record) (Item, error)

// classEntry binds a CollectionClass to the factory that builds its items.
type classEntry struct {
	class   CollectionClass
	factory ItemFactory
}

// ClassRegistry resolves a class name to its schema and item factory;
// Repository.CreateCollection builds Collection handles from it. It caches nothing itself beyond the
// registration map; per-bulk-call memoisation is the caller's (classCache's)
// responsibility.
type ClassRegistry struct {
	classes map[string]classEntry
}

// NewClassRegistry returns an empty registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]classEntry)}
}

// Register adds a CollectionClass and the factory used to build its items.
// Registering the same name twice overwrites the previous registration.
func (r *ClassRegistry) Register(class CollectionClass, factory ItemFactory) {
	r.classes[class.Name] = classEntry{class: class, factory: factory}
}

// lookup returns the classEntry for name, or an UnknownClass error.
func (r *ClassRegistry) lookup(name string) (classEntry, error) {
	e, ok := r.classes[name]
	if !ok {
		return classEntry{}, newError(UnknownClass, fmt.Errorf("class %q is not registered", name), name)
	}
	return e, nil
}

// newItem materializes a new Item of the given class name from record.
func (r *ClassRegistry) newItem(className string, record Record) (Item, error) {
	e, err := r.lookup(className)
	if err != nil {
		return nil, err
	}
	return e.factory(record)
}

// classCache memoises one Collection/class resolution per class name for the
// duration of a single bulk operation (getItems, findItems, forEachItems),
// so repeated classes in a result set don't re-resolve the registry.
type classCache struct {
	registry *ClassRegistry
	entries  map[string]classEntry
}

func newClassCache(registry *ClassRegistry) *classCache {
	return &classCache{registry: registry, entries: make(map[string]classEntry)}
}

func (c *classCache) materialize(className string, record Record) (Item, error) {
	e, ok := c.entries[className]
	if !ok {
		var err error
		e, err = c.registry.lookup(className)
		if err != nil {
			return nil, err
		}
		c.entries[className] = e
	}
	return e.factory(record)
}
