package migrate

import (
	"fmt"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// Direction tells whether a step runs towards newer or older versions.
type Direction uint8

const (
	Upgrade Direction = iota
	Downgrade
)

func (d Direction) String() string {
	if d == Downgrade {
		return "downgrade"
	}
	return "upgrade"
}

// ChangeKind classifies the edit a step pair was built from.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindRemoved  ChangeKind = "removed"
	KindRenamed  ChangeKind = "renamed"
	KindModified ChangeKind = "modified"
	KindCustom   ChangeKind = "custom"
)

// Func transforms the root object of a document in place. It must leave the document
// well formed on every return path.
type Func func(doc *document.Object) error

// Step is one forward/backward pair anchored between Down and Up. Forward turns a document
// shaped like Down into the Up shape; Backward is its inverse.
type Step[V any] struct {
	Kind        ChangeKind
	Down        V
	Up          V
	Attribute   string
	Forward     Func
	Backward    Func
	Description string
}

func (s *Step[V]) fn(dir Direction) Func {
	if dir == Downgrade {
		return s.Backward
	}
	return s.Forward
}

// Plan is the ordered list of steps a migration applies.
type Plan[V any] struct {
	From      V
	To        V
	Direction Direction
	Steps     []*Step[V]
}

// Len returns the number of steps in the plan.
func (p Plan[V]) Len() int { return len(p.Steps) }

// Descriptions lists the step descriptions in application order, prefixed with the
// direction.
func (p Plan[V]) Descriptions() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = fmt.Sprintf("%s %v->%v: %s", p.Direction, s.Down, s.Up, s.Description)
	}
	return out
}
