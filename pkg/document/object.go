package document

import "iter"

// Object is an attribute map that remembers insertion order. Order only matters for
// rendering; lookups and equality ignore it.
type Object struct {
	keys   []string
	values map[string]Node
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Node)}
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) node()      {}

// Len returns the number of attributes.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the attribute names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// All iterates attributes in insertion order.
func (o *Object) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Get returns the attribute named name.
func (o *Object) Get(name string) (Node, bool) {
	if o == nil {
		return nil, false
	}
	n, ok := o.values[name]
	return n, ok
}

// Has reports whether the attribute exists, including when it holds Null.
func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Set stores n under name. An existing attribute keeps its position. A nil node is stored
// as Null.
func (o *Object) Set(name string, n Node) {
	if n == nil {
		n = Null{}
	}
	if o.values == nil {
		o.values = make(map[string]Node)
	}
	if _, ok := o.values[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.values[name] = n
}

// SetValue stores FromValue(v) under name.
func (o *Object) SetValue(name string, v any) {
	o.Set(name, FromValue(v))
}

// Remove deletes the attribute and returns the old node. Removing a missing attribute is a
// no-op.
func (o *Object) Remove(name string) (Node, bool) {
	if o == nil {
		return nil, false
	}
	n, ok := o.values[name]
	if !ok {
		return nil, false
	}
	delete(o.values, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return n, true
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	out := &Object{
		keys:   make([]string, 0, o.Len()),
		values: make(map[string]Node, o.Len()),
	}
	for k, v := range o.All() {
		out.keys = append(out.keys, k)
		out.values[k] = Clone(v)
	}
	return out
}

// Equal reports whether both objects hold equal attributes.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for k, v := range o.All() {
		w, ok := other.Get(k)
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

// String renders the object as compact JSON.
func (o *Object) String() string {
	b, err := o.MarshalJSON()
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return string(b)
}
