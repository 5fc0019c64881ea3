package source

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps source names to constructors, allowing sources to be
// resolved by name at fetch time.
type Registry struct {
	mu   sync.Mutex
	ctor map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctor: make(map[string]Constructor)}
}

// Register adds a constructor under the given name. Registering an
// existing name overwrites it silently; last write wins.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctor[name] = ctor
}

// Open resolves a name and constructs a source with the given parameters.
// Unknown names fail with ErrNotFound.
func (r *Registry) Open(name string, params Params) (Source, error) {
	r.mu.Lock()
	ctor, ok := r.ctor[name]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q (available: %v)", ErrNotFound, name, r.Names())
	}
	return ctor(params)
}

// Names returns all registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.ctor))
	for name := range r.ctor {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
