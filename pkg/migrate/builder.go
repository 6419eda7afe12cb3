package migrate

import (
	"fmt"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// ValueFunc computes an attribute value from the document as it is before the step
// mutates it. It must be pure: registries are shared between concurrent migrations.
type ValueFunc func(doc *document.Object) (any, error)

// ModifyFunc rewrites the current value of an attribute. It receives the whole document
// for cross-field logic and must return an error instead of coercing a node of the wrong
// kind.
type ModifyFunc func(doc *document.Object, current document.Node) (any, error)

// Constant returns a ValueFunc yielding v. The value is converted once and every call
// hands out its own copy.
func Constant(v any) ValueFunc {
	n := document.FromValue(v)
	return func(*document.Object) (any, error) {
		return document.Clone(n), nil
	}
}

// CopyFrom returns a ValueFunc reading the node at a slash separated path of the document.
// A missing path yields null.
func CopyFrom(path string) ValueFunc {
	return func(doc *document.Object) (any, error) {
		n, ok, err := document.Lookup(doc, path)
		if err != nil {
			return nil, err
		}
		if !ok {
			return document.Null{}, nil
		}
		return n, nil
	}
}

// AttributeAdded declares that name was introduced in version up with a constant default.
func (r *Registry[V]) AttributeAdded(down, up V, name string, value any) error {
	return r.AttributeAddedFunc(down, up, name, Constant(value))
}

// AttributeAddedFunc declares that name was introduced in version up. Upgrading sets it
// from value, downgrading removes it.
func (r *Registry[V]) AttributeAddedFunc(down, up V, name string, value ValueFunc) error {
	if err := r.checkName(name); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("%s: %w: attribute %s has no value source", r.subject, ErrInvalidChange, name)
	}
	return r.Register(Step[V]{
		Kind:        KindAdded,
		Down:        down,
		Up:          up,
		Attribute:   name,
		Forward:     setFrom(name, value),
		Backward:    remove(name),
		Description: fmt.Sprintf("Attribute %s was added to %s", name, r.subject),
	})
}

// AttributeRemoved declares that name was dropped in version up. Upgrading removes it,
// downgrading restores it from a constant default.
func (r *Registry[V]) AttributeRemoved(down, up V, name string, value any) error {
	return r.AttributeRemovedFunc(down, up, name, Constant(value))
}

// AttributeRemovedFunc is AttributeRemoved with a computed value.
func (r *Registry[V]) AttributeRemovedFunc(down, up V, name string, value ValueFunc) error {
	if err := r.checkName(name); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("%s: %w: attribute %s has no value source", r.subject, ErrInvalidChange, name)
	}
	return r.Register(Step[V]{
		Kind:        KindRemoved,
		Down:        down,
		Up:          up,
		Attribute:   name,
		Forward:     remove(name),
		Backward:    setFrom(name, value),
		Description: fmt.Sprintf("Attribute %s was removed from %s", name, r.subject),
	})
}

// AttributeRenamed declares that oldName is called newName from version up on. Both
// directions always write the destination: a missing source becomes an explicit null.
func (r *Registry[V]) AttributeRenamed(down, up V, oldName, newName string) error {
	if err := r.checkName(oldName); err != nil {
		return err
	}
	if err := r.checkName(newName); err != nil {
		return err
	}
	if oldName == newName {
		return fmt.Errorf("%s: %w: attribute %s renamed to itself", r.subject, ErrInvalidChange, oldName)
	}
	return r.Register(Step[V]{
		Kind:        KindRenamed,
		Down:        down,
		Up:          up,
		Attribute:   oldName,
		Forward:     move(oldName, newName),
		Backward:    move(newName, oldName),
		Description: fmt.Sprintf("Attribute %s on %s was renamed to %s", oldName, r.subject, newName),
	})
}

// AttributeModified declares that the value of name changed meaning in version up.
// backward rewrites an up shaped value into the down shape and forward does the reverse;
// the argument order follows the down/up order of the versions. A missing attribute stays
// missing.
func (r *Registry[V]) AttributeModified(down, up V, name string, backward, forward ModifyFunc) error {
	if err := r.checkName(name); err != nil {
		return err
	}
	if backward == nil || forward == nil {
		return fmt.Errorf("%s: %w: attribute %s needs both transforms", r.subject, ErrInvalidChange, name)
	}
	return r.Register(Step[V]{
		Kind:        KindModified,
		Down:        down,
		Up:          up,
		Attribute:   name,
		Forward:     modify(name, forward),
		Backward:    modify(name, backward),
		Description: fmt.Sprintf("Attribute %s on %s was modified", name, r.subject),
	})
}

func (r *Registry[V]) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%s: %w: empty attribute name", r.subject, ErrInvalidChange)
	}
	return nil
}

func setFrom(name string, value ValueFunc) Func {
	return func(doc *document.Object) error {
		v, err := value(doc)
		if err != nil {
			return shapeError(err)
		}
		doc.Set(name, document.Clone(document.FromValue(v)))
		return nil
	}
}

func remove(name string) Func {
	return func(doc *document.Object) error {
		doc.Remove(name)
		return nil
	}
}

func move(from, to string) Func {
	return func(doc *document.Object) error {
		n, ok := doc.Remove(from)
		if !ok {
			n = document.Null{}
		}
		doc.Set(to, n)
		return nil
	}
}

func modify(name string, fn ModifyFunc) Func {
	return func(doc *document.Object) error {
		cur, ok := doc.Get(name)
		if !ok {
			return nil
		}
		v, err := fn(doc, cur)
		if err != nil {
			return shapeError(err)
		}
		doc.Set(name, document.Clone(document.FromValue(v)))
		return nil
	}
}
