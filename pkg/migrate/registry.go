package migrate

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Registry holds every step for one document type. It keeps two views over the same
// steps: the upgrade index groups forward functions by down version in ascending order,
// the downgrade index groups backward functions by up version in descending order with
// each group in reverse registration order.
//
// A registry is built once during setup. After that it is only read and may be shared by
// any number of goroutines calling Migrate, as long as setup happens before first use.
type Registry[V any] struct {
	subject string
	compare func(a, b V) int
	steps   []*Step[V]
	up      index[V]
	down    index[V]
	log     *zap.Logger
}

type group[V any] struct {
	key   V
	steps []*Step[V]
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for registration and migration diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// NewRegistry returns an empty registry for the document type named subject. compare must
// define a total order over versions.
func NewRegistry[V any](subject string, compare func(a, b V) int, opts ...Option) *Registry[V] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Registry[V]{
		subject: subject,
		compare: compare,
		up:      index[V]{order: compare},
		down:    index[V]{order: func(a, b V) int { return compare(b, a) }},
		log:     o.log.With(zap.String("subject", subject)),
	}
}

// NewOrderedRegistry returns a registry for versions with a natural order.
func NewOrderedRegistry[V cmp.Ordered](subject string, opts ...Option) *Registry[V] {
	return NewRegistry[V](subject, cmp.Compare[V], opts...)
}

// Subject returns the document type name.
func (r *Registry[V]) Subject() string { return r.subject }

// Compare orders two versions with the registry's ordering.
func (r *Registry[V]) Compare(a, b V) int { return r.compare(a, b) }

// Register adds a step pair. The forward function is appended to the upgrade group of
// s.Down, the backward function is prepended to the downgrade group of s.Up.
func (r *Registry[V]) Register(s Step[V]) error {
	if r.compare(s.Down, s.Up) >= 0 {
		return fmt.Errorf("%s: %w: %v >= %v", r.subject, ErrInvalidRange, s.Down, s.Up)
	}
	if s.Forward == nil || s.Backward == nil {
		return fmt.Errorf("%s: %w: step %q needs both directions", r.subject, ErrInvalidChange, s.Description)
	}
	if s.Kind == "" {
		s.Kind = KindCustom
	}
	if s.Description == "" {
		s.Description = fmt.Sprintf("Custom change of %s", r.subject)
	}
	step := &s
	r.steps = append(r.steps, step)

	ug := r.up.at(s.Down)
	ug.steps = append(ug.steps, step)

	dg := r.down.at(s.Up)
	dg.steps = append([]*Step[V]{step}, dg.steps...)

	r.log.Debug("registered step",
		zap.String("kind", string(s.Kind)),
		zap.Any("down", s.Down),
		zap.Any("up", s.Up),
		zap.String("description", s.Description))
	return nil
}

// index groups steps by a version key kept sorted by order.
type index[V any] struct {
	order  func(a, b V) int
	groups []group[V]
}

// at returns the group for key, inserting an empty one at its sorted position.
func (x *index[V]) at(key V) *group[V] {
	i, found := slices.BinarySearchFunc(x.groups, key, func(g group[V], k V) int { return x.order(g.key, k) })
	if !found {
		x.groups = slices.Insert(x.groups, i, group[V]{key: key})
	}
	return &x.groups[i]
}

// Describe returns the human readable change descriptions in registration order.
func (r *Registry[V]) Describe() []string {
	out := make([]string, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Description
	}
	return out
}

// Fingerprint hashes the change descriptions so tooling can tell whether two builds of a
// registry declare the same history.
func (r *Registry[V]) Fingerprint() uint64 {
	h := xxhash.New()
	for _, s := range r.steps {
		_, _ = h.WriteString(string(s.Kind))
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(s.Description)
		_, _ = h.WriteString("\n")
	}
	return h.Sum64()
}

// Len returns the number of registered step pairs.
func (r *Registry[V]) Len() int { return len(r.steps) }
