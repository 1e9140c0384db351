package component

import (
	"sync"

	"github.com/google/uuid"
)

// Source is the read side of a registry as seen by the resolver.
type Source interface {
	Lookup(name string) (Definition, bool)
	Len() int
}

// Lister is a Source that can also enumerate its names.
type Lister interface {
	Source
	Names() []string
}

// Registry maintains known component definitions. Definitions live in a slice
// in registration order; index maps a name to its slot.
type Registry struct {
	mu         sync.RWMutex
	id         string
	generation uint64
	defs       []Definition
	index      map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		id:    uuid.NewString(),
		index: map[string]int{},
	}
}

// Register installs a definition. A definition registered under an existing
// name replaces the previous one in place. Parents are not required to exist
// yet; missing ancestors are reported by Resolve.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	def = def.Normalized()
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot, exists := r.index[def.Name]; exists {
		r.defs[slot] = def
	} else {
		r.index[def.Name] = len(r.defs)
		r.defs = append(r.defs, def)
	}
	r.generation++
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(name)
}

func (r *Registry) lookup(name string) (Definition, bool) {
	slot, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[slot], true
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.defs))
	for i, def := range r.defs {
		names[i] = def.Name
	}
	return names
}

// Definitions returns a copy of every definition in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// ID identifies this registry instance.
func (r *Registry) ID() string {
	return r.id
}

// Generation increases with every successful Register.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Resolve computes the forest for names against a consistent view of the
// registry. Registrations block until it returns.
func (r *Registry) Resolve(names ...string) (Forest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Resolve(lockedView{r}, names)
}

// ResolveVersioned is Resolve plus the generation the forest was computed
// from, both read under the same lock.
func (r *Registry) ResolveVersioned(names ...string) (Forest, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	forest, err := Resolve(lockedView{r}, names)
	return forest, r.generation, err
}

// lockedView reads the registry without taking the lock again; the caller
// already holds it.
type lockedView struct {
	r *Registry
}

func (v lockedView) Lookup(name string) (Definition, bool) { return v.r.lookup(name) }
func (v lockedView) Len() int                              { return len(v.r.defs) }
