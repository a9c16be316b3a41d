package directive

import (
	"fmt"
	"slices"
	"sync"

	"slyc/internal/expr"
)

// Factory builds a plugin for one directive occurrence.
type Factory func(sig Signature, ctx Context, e *expr.Expression) Plugin

// Registry maps directive names to factories. It is safe for concurrent use:
// the driver shares one registry between parallel compilations.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty directive registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in directive.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(Name, func(sig Signature, ctx Context, e *expr.Expression) Plugin {
		return NewAttribute(sig, ctx, e)
	}); err != nil {
		panic(err)
	}
	return r
}

// Register adds a factory. Names are case-insensitive and must be unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("directive: invalid registration %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("directive %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Lookup returns the factory for a directive name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns registered directive names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered directives.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
