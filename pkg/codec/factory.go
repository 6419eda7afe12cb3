package codec

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/repsejnworb/doc-migrator/pkg/document"
)

// ErrUnknownConverter is returned when no constructor is registered for an id.
var ErrUnknownConverter = errors.New("unknown converter")

// Converter moves documents of one type between versions. *migrate.Registry satisfies it.
type Converter[V any] interface {
	Migrate(doc *document.Object, from, to V) (*document.Object, error)
	Describe() []string
}

// Constructor builds a converter on first use.
type Constructor[V any] func() (Converter[V], error)

// Factory builds converters by id. Constructors are registered during setup; Get builds
// each converter at most once, also when many goroutines ask for it at the same time.
// Failed constructions are not cached.
type Factory[V any] struct {
	mu     sync.RWMutex
	ctors  map[string]Constructor[V]
	built  map[string]Converter[V]
	flight singleflight.Group
}

func NewFactory[V any]() *Factory[V] {
	return &Factory[V]{
		ctors: make(map[string]Constructor[V]),
		built: make(map[string]Converter[V]),
	}
}

// Register adds the constructor for id. Registering an id twice is an error.
func (f *Factory[V]) Register(id string, ctor Constructor[V]) error {
	if id == "" || ctor == nil {
		return errors.New("converter id and constructor are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.ctors[id]; exists {
		return fmt.Errorf("duplicate converter %s", id)
	}
	f.ctors[id] = ctor
	return nil
}

// IDs returns the registered converter ids in no particular order.
func (f *Factory[V]) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.ctors))
	for id := range f.ctors {
		out = append(out, id)
	}
	return out
}

// Get returns the converter for id, building it on first use.
func (f *Factory[V]) Get(id string) (Converter[V], error) {
	f.mu.RLock()
	c, ok := f.built[id]
	ctor, known := f.ctors[id]
	f.mu.RUnlock()
	if ok {
		return c, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConverter, id)
	}

	v, err, _ := f.flight.Do(id, func() (interface{}, error) {
		f.mu.RLock()
		c, ok := f.built[id]
		f.mu.RUnlock()
		if ok {
			return c, nil
		}
		c, err := ctor()
		if err != nil {
			return nil, fmt.Errorf("build converter %s: %w", id, err)
		}
		if c == nil {
			return nil, fmt.Errorf("build converter %s: constructor returned nil", id)
		}
		f.mu.Lock()
		f.built[id] = c
		f.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Converter[V]), nil
}
