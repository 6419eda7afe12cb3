package migrate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// Plan returns the steps Migrate applies to move a document from one version to another.
//
// Upgrading visits the upgrade groups whose key k satisfies from <= k < to; downgrading
// visits the downgrade groups with to < k <= from. A step anchored at version A therefore
// lifts a document that is exactly at A, and is never replayed when the same document is
// later moved below A.
func (r *Registry[V]) Plan(from, to V) Plan[V] {
	p := Plan[V]{From: from, To: to}
	switch c := r.compare(from, to); {
	case c == 0:
		return p
	case c < 0:
		p.Direction = Upgrade
		for _, g := range r.up.groups {
			if r.compare(g.key, from) < 0 {
				continue
			}
			if r.compare(g.key, to) >= 0 {
				break
			}
			p.Steps = append(p.Steps, g.steps...)
		}
	default:
		p.Direction = Downgrade
		for _, g := range r.down.groups {
			if r.compare(g.key, from) > 0 {
				continue
			}
			if r.compare(g.key, to) <= 0 {
				break
			}
			p.Steps = append(p.Steps, g.steps...)
		}
	}
	return p
}

// Migrate moves doc from one version to another in place and returns it. It is not
// atomic: when a step fails the document is left as the previous steps made it, so callers
// needing all or nothing semantics should pass a clone.
func (r *Registry[V]) Migrate(doc *document.Object, from, to V) (*document.Object, error) {
	if doc == nil {
		return nil, fmt.Errorf("%s: %w: document is not an object", r.subject, ErrShape)
	}
	p := r.Plan(from, to)
	if p.Len() == 0 {
		return doc, nil
	}
	for _, s := range p.Steps {
		if err := s.fn(p.Direction)(doc); err != nil {
			return doc, &StepError{
				Subject:     r.subject,
				Description: s.Description,
				Attribute:   s.Attribute,
				Direction:   p.Direction,
				Err:         err,
			}
		}
	}
	r.log.Debug("migrated document",
		zap.Stringer("direction", p.Direction),
		zap.Any("from", from),
		zap.Any("to", to),
		zap.Int("steps", p.Len()))
	return doc, nil
}

// MigrateNode is Migrate for a generic node that must hold an object.
func (r *Registry[V]) MigrateNode(n document.Node, from, to V) (*document.Object, error) {
	obj, err := document.AsObject(n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.subject, ErrShape, err)
	}
	return r.Migrate(obj, from, to)
}

// shapeError marks kind mismatches reported by value functions as shape errors.
func shapeError(err error) error {
	if errors.Is(err, document.ErrKind) && !errors.Is(err, ErrShape) {
		return fmt.Errorf("%w: %w", ErrShape, err)
	}
	return err
}
