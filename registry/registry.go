// Package registry is the process-wide catalogue of known block types:
// each type's static Descriptor plus the factory that builds a fresh
// instance. Blocks register themselves at package init; registering the
// same qname twice with an identical descriptor is a no-op, not an error,
// so repeated init-time registration stays safe to repeat.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"

	"logicmesh/block"
)

// Factory builds a fresh block instance with the given id.
type Factory func(id uuid.UUID) block.Block

type entry struct {
	descriptor block.Descriptor
	factory    Factory
}

// Registry is a concurrency-safe catalogue keyed by qname
// (library + "::" + name, see block.Descriptor.QName).
type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register records desc and its factory under desc.QName(). Registering
// the same qname again with an identical descriptor is a no-op; registering
// a different descriptor under an already-used qname fails with
// errdefs.ErrAlreadyExists — block type names are unique within a library.
func (r *Registry) Register(desc block.Descriptor, factory Factory) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: descriptor name is empty", errdefs.ErrInvalidArgument)
	}
	if factory == nil {
		return fmt.Errorf("%w: factory is nil for %s", errdefs.ErrInvalidArgument, desc.QName())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	qname := desc.QName()
	if existing, ok := r.entries[qname]; ok {
		if reflect.DeepEqual(existing.descriptor, desc) {
			return nil
		}
		return fmt.Errorf("%w: block type %s already registered with a different descriptor", errdefs.ErrAlreadyExists, qname)
	}
	r.entries[qname] = entry{descriptor: desc, factory: factory}
	return nil
}

// RegisterDescriptor records desc without a factory. Used for external
// blocks (Implementation == block.ImplementationExternal): an embedding
// host typically knows its block shapes before it has resolved the host
// callables that implement them, so descriptor registration and factory
// binding are split into two steps. Registering the same qname again with
// an identical descriptor is a no-op, matching Register's idempotence, and
// leaves any factory already bound in place; registering over a different
// descriptor fails with errdefs.ErrAlreadyExists.
func (r *Registry) RegisterDescriptor(desc block.Descriptor) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: descriptor name is empty", errdefs.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	qname := desc.QName()
	if existing, ok := r.entries[qname]; ok {
		if reflect.DeepEqual(existing.descriptor, desc) {
			return nil
		}
		return fmt.Errorf("%w: block type %s already registered with a different descriptor", errdefs.ErrAlreadyExists, qname)
	}
	r.entries[qname] = entry{descriptor: desc}
	return nil
}

// SetFactory binds factory to the descriptor already registered under
// qname, replacing any previously bound factory. Fails with
// errdefs.ErrNotFound if no descriptor is registered under qname yet — a
// factory always binds to a descriptor, never the other way around.
func (r *Registry) SetFactory(qname string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("%w: factory is nil for %s", errdefs.ErrInvalidArgument, qname)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[qname]
	if !ok {
		return fmt.Errorf("%w: block type %s", errdefs.ErrNotFound, qname)
	}
	e.factory = factory
	r.entries[qname] = e
	return nil
}

// Descriptor looks up the descriptor for qname.
func (r *Registry) Descriptor(qname string) (block.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[qname]
	if !ok {
		return block.Descriptor{}, fmt.Errorf("%w: block type %s", errdefs.ErrNotFound, qname)
	}
	return e.descriptor, nil
}

// Make instantiates a new block of the named type with the given id. A
// descriptor registered via RegisterDescriptor with no factory bound yet
// (the external-block window between registration and SetFactory) fails
// with errdefs.ErrFailedPrecondition rather than panicking on a nil call.
func (r *Registry) Make(qname string, id uuid.UUID) (block.Block, error) {
	r.mu.Lock()
	e, ok := r.entries[qname]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: block type %s", errdefs.ErrNotFound, qname)
	}
	if e.factory == nil {
		return nil, fmt.Errorf("%w: block type %s has no factory bound", errdefs.ErrFailedPrecondition, qname)
	}
	return e.factory(id), nil
}

// List returns every registered descriptor, sorted by qname, for
// introspection.
func (r *Registry) List() []block.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]block.Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QName() < out[j].QName() })
	return out
}
