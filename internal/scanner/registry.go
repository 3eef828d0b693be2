package scanner

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/subsort/subsort/internal/probe"
)

// Factory constructs a module bound to the shared probe client.
type Factory func(client *probe.Client, log *slog.Logger) Module

// Registry maps capability names to module factories. New modules
// register here without the orchestrator changing.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering the same name twice
// overwrites the earlier factory.
func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = f
}

// Build instantiates the named module.
func (r *Registry) Build(name string, client *probe.Client, log *slog.Logger) (Module, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", name)
	}
	return f(client, log), nil
}

// Names returns all registered module names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// SortedNames returns all registered module names alphabetically, for
// listings.
func (r *Registry) SortedNames() []string {
	out := r.Names()
	sort.Strings(out)
	return out
}
