package model

import "slices"

// ColumnMapping is a single table column.
type ColumnMapping struct {
	store
}

// Column selectors.
var Column = struct {
	Name      Attr[*ColumnMapping, string]
	Length    Attr[*ColumnMapping, int]
	NotNull   Attr[*ColumnMapping, bool]
	Unique    Attr[*ColumnMapping, bool]
	UniqueKey Attr[*ColumnMapping, string]
	SQLType   Attr[*ColumnMapping, string]
	Index     Attr[*ColumnMapping, string]
	Check     Attr[*ColumnMapping, string]
	Default   Attr[*ColumnMapping, string]
	Precision Attr[*ColumnMapping, int]
	Scale     Attr[*ColumnMapping, int]
}{
	Name:      NewAttr[*ColumnMapping, string]("name"),
	Length:    NewAttr[*ColumnMapping, int]("length"),
	NotNull:   NewAttr[*ColumnMapping, bool]("not-null"),
	Unique:    NewAttr[*ColumnMapping, bool]("unique"),
	UniqueKey: NewAttr[*ColumnMapping, string]("unique-key"),
	SQLType:   NewAttr[*ColumnMapping, string]("sql-type"),
	Index:     NewAttr[*ColumnMapping, string]("index"),
	Check:     NewAttr[*ColumnMapping, string]("check"),
	Default:   NewAttr[*ColumnMapping, string]("default"),
	Precision: NewAttr[*ColumnMapping, int]("precision"),
	Scale:     NewAttr[*ColumnMapping, int]("scale"),
}

// NewColumn returns a column named name at the given layer.
func NewColumn(name string, layer Layer) *ColumnMapping {
	c := &ColumnMapping{}
	Set(c, Column.Name, layer, name)
	return c
}

// Name returns the resolved column name.
func (c *ColumnMapping) Name() string { return Get(c, Column.Name) }

// Clone returns a deep copy.
func (c *ColumnMapping) Clone() *ColumnMapping {
	return &ColumnMapping{store: c.clone()}
}

// LayeredColumns keeps one column list per layer. The highest layer with any
// columns wins as a whole; lists are never merged across layers.
type LayeredColumns struct {
	layers map[Layer][]*ColumnMapping
}

// Add appends col at layer unless a column with the same name is present.
func (l *LayeredColumns) Add(layer Layer, col *ColumnMapping) {
	if l.layers == nil {
		l.layers = make(map[Layer][]*ColumnMapping)
	}
	if slices.ContainsFunc(l.layers[layer], func(c *ColumnMapping) bool { return c.Name() == col.Name() }) {
		return
	}
	l.layers[layer] = append(l.layers[layer], col)
}

// Replace sets the columns of a layer, dropping what was there.
func (l *LayeredColumns) Replace(layer Layer, cols ...*ColumnMapping) {
	if l.layers == nil {
		l.layers = make(map[Layer][]*ColumnMapping)
	}
	l.layers[layer] = nil
	for _, c := range cols {
		l.Add(layer, c)
	}
}

// Clear removes the columns of a layer.
func (l *LayeredColumns) Clear(layer Layer) {
	delete(l.layers, layer)
}

// Columns returns the columns of the highest populated layer.
func (l *LayeredColumns) Columns() []*ColumnMapping {
	top, ok := l.top()
	if !ok {
		return nil
	}
	return l.layers[top]
}

// All returns the columns of every layer, lowest layer first.
func (l *LayeredColumns) All() []*ColumnMapping {
	var out []*ColumnMapping
	for _, layer := range []Layer{Defaults, Conventions, UserSupplied} {
		out = append(out, l.layers[layer]...)
	}
	return out
}

// Layer returns the layer Columns resolves from.
func (l *LayeredColumns) Layer() (Layer, bool) { return l.top() }

// HasUserDefined reports whether columns were set at UserSupplied.
func (l *LayeredColumns) HasUserDefined() bool {
	return len(l.layers[UserSupplied]) > 0
}

// Len returns the number of resolved columns.
func (l *LayeredColumns) Len() int { return len(l.Columns()) }

// Names returns the resolved column names.
func (l *LayeredColumns) Names() []string {
	cols := l.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return names
}

func (l *LayeredColumns) top() (Layer, bool) {
	top, found := Defaults, false
	for layer, cols := range l.layers {
		if len(cols) > 0 && (!found || layer > top) {
			top, found = layer, true
		}
	}
	return top, found
}

// Clone returns a deep copy.
func (l LayeredColumns) Clone() LayeredColumns {
	c := LayeredColumns{}
	for layer, cols := range l.layers {
		for _, col := range cols {
			c.Add(layer, col.Clone())
		}
	}
	return c
}

// Columned is implemented by entities that own columns.
type Columned interface {
	ColumnSet() *LayeredColumns
}
