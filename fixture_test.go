package objrepo

// mapItem is a minimal Item backed by a plain map, used across this
// package's tests. className/superClasses describe its place in the class
// chain; idField is the primary key field name.
type mapItem struct {
	className    string
	superClasses []string
	idField      string
	values       Record
	isNew        bool
}

func newMapItem(className, idField string, superClasses []string, values Record) *mapItem {
	return &mapItem{
		className:    className,
		superClasses: superClasses,
		idField:      idField,
		values:       values,
		isNew:        true,
	}
}

func (m *mapItem) Class() CollectionClass {
	return CollectionClass{Name: m.className, SuperClasses: m.superClasses}
}

func (m *mapItem) ClassNames() []string {
	return ClassNamesFor(m.Class())
}

func (m *mapItem) PrimaryKeyValue() string {
	v, _ := m.values[m.idField].(string)
	return v
}

func (m *mapItem) IsNew() bool {
	return m.isNew
}

func (m *mapItem) Serialize() (Record, error) {
	out := make(Record, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *mapItem) ReplaceValue(record Record) error {
	m.values = record
	m.isNew = false
	return nil
}
