package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// AdaptorFactory builds a fresh Adaptor. Adaptors hold per-client state, so
// every client gets its own instance.
type AdaptorFactory func() Adaptor

// UnknownAdaptorError is returned when no adaptor is registered under Name.
type UnknownAdaptorError struct {
	Name      string
	Available []string
}

func (e *UnknownAdaptorError) Error() string {
	return fmt.Sprintf("unknown llm adaptor %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Registry maps vendor names to adaptor factories. Names are case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AdaptorFactory
}

var vendors = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]AdaptorFactory)}
}

// Register binds factory to name and any aliases, replacing earlier bindings.
func (r *Registry) Register(factory AdaptorFactory, name string, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range append([]string{name}, aliases...) {
		r.factories[normalizeVendor(n)] = factory
	}
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the adaptor registered under name.
func (r *Registry) New(name string) (Adaptor, error) {
	r.mu.RLock()
	factory, ok := r.factories[normalizeVendor(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownAdaptorError{Name: name, Available: r.List()}
	}
	return factory(), nil
}

func normalizeVendor(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds an adaptor to the package registry used by NewClient.
func Register(factory AdaptorFactory, name string, aliases ...string) {
	vendors.Register(factory, name, aliases...)
}

// NewAdaptor builds an adaptor from the package registry.
func NewAdaptor(name string) (Adaptor, error) {
	return vendors.New(name)
}

// Vendors lists the names in the package registry.
func Vendors() []string {
	return vendors.List()
}
