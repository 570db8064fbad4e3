package objrepo

// Record is the opaque, JSON-shaped property bag an Item serializes to and
// deserializes from. The core never inspects its contents.
type Record = map[string]any

// Item is the capability surface the repository needs from a user-facing item
// object. The repository never constructs or inspects items beyond these calls;
// construction, dirty tracking, and primary-key generation belong to the schema
// layer the caller provides.
type Item interface {
	// Class returns this item's owning CollectionClass.
	Class() CollectionClass
	// ClassNames returns the item's class chain, most-derived first, restricted to
	// classes that own a primary key.
	ClassNames() []string
	// PrimaryKeyValue returns the item's primary key.
	PrimaryKeyValue() string
	// IsNew reports whether this item has never been successfully put.
	IsNew() bool
	// Serialize returns the opaque record to persist.
	Serialize() (Record, error)
	// ReplaceValue refreshes this item's in-memory state from record, in place.
	ReplaceValue(record Record) error
}

// CollectionClass is a schema entry: a collection's name, the ordered chain of
// superclass collections that also own a primary key, and the secondary
// indexes declared on its items. Item construction is not part of it: the
// ItemFactory registered alongside it in a ClassRegistry builds the items.
type CollectionClass struct {
	// Name is the collection/class name, e.g. "Accounts", "People".
	Name string
	// SuperClasses lists the base collection classes this class includes, in the
	// item's classNames order (most-derived is this class itself, implied).
	SuperClasses []string
	// Indexes lists the field names this collection declares secondary indexes on.
	Indexes []string
}

// ClassNamesFor returns class's own name followed by its SuperClasses, the
// usual shape of an Item.ClassNames implementation for a class with no
// multiple inheritance.
func ClassNamesFor(class CollectionClass) []string {
	return append([]string{class.Name}, class.SuperClasses...)
}
