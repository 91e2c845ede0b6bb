package generator

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds generators by name so configuration can select one.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates a registry with the built-in generators registered.
func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}
	r.generators[StaticName] = NewStatic()
	return r
}

// Register adds a generator under its own name.
func (r *Registry) Register(g Generator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := g.Name()
	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("generator %s already registered", name)
	}
	r.generators[name] = g
	return nil
}

// Get retrieves a generator by name
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, exists := r.generators[name]
	if !exists {
		return nil, fmt.Errorf("generator %s not found (available: %v)", name, r.namesLocked())
	}
	return g, nil
}

// List returns all registered generator names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
