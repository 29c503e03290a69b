package provider

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the configured providers in declaration order. Declaration
// order is the order aggregated search results are concatenated in.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	providers map[string]Provider
	disabled  map[string]bool
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		disabled:  make(map[string]bool),
	}
}

// Register appends a provider. Names must be unique.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("nil provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns a provider by name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	return p, exists
}

// List returns all registered provider names in declaration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Disable excludes a provider from Enabled without forgetting its position.
func (r *Registry) Disable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("provider %s not found", name)
	}
	r.disabled[name] = true
	return nil
}

// Only disables every provider not named. Unknown names are an error.
func (r *Registry) Only(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, exists := r.providers[name]; !exists {
			return fmt.Errorf("provider %s not found", name)
		}
	}
	for _, name := range r.order {
		r.disabled[name] = !slices.Contains(names, name)
	}
	return nil
}

// Enabled returns enabled providers in declaration order.
func (r *Registry) Enabled() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		out = append(out, r.providers[name])
	}
	return out
}
