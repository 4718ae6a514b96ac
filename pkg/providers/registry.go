package providers

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// Deps carries the collaborators shared by every backend.
type Deps struct {
	// Env resolves credentials. Defaults to the process environment.
	Env EnvSource

	// Log receives structured diagnostics. Defaults to a no-op logger.
	Log *logger.Logger

	// Out receives human-readable validation diagnostics. Defaults to
	// io.Discard.
	Out io.Writer
}

// WithDefaults fills nil fields.
func (d Deps) WithDefaults() Deps {
	if d.Env == nil {
		d.Env = OSEnv{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	return d
}

// Factory constructs a provider from the full configuration. Constructors
// return *UnavailableError when a required capability is missing.
type Factory func(cfg *config.Config, deps Deps) (Provider, error)

// Registry maps provider names to factories. Names are kept in
// registration order.
type Registry struct {
	mu        sync.RWMutex
	names     []string
	factories map[string]Factory
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Default returns the registry the backends package fills from init.
func Default() *Registry {
	return defaultRegistry
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	key := normalizeName(name)
	if key == "" || factory == nil {
		panic("providers: Register requires a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; !exists {
		r.names = append(r.names, key)
	}
	r.factories[key] = factory
}

// List returns registered names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Create constructs the provider registered under name. Matching ignores
// case and surrounding whitespace.
func (r *Registry) Create(name string, cfg *config.Config, deps Deps) (Provider, error) {
	key := normalizeName(name)

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownProviderError{Name: name, Available: r.List()}
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	deps = deps.WithDefaults()
	deps.Log = deps.Log.Named("provider").WithFields(zap.String("provider", key))

	p, err := factory(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("creating provider %s: %w", key, err)
	}
	return p, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
