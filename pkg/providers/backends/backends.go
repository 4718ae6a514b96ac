// Package backends registers every search backend with the default
// provider registry. Import it for side effects.
package backends

import (
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers/claude"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers/mcp"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers/ollama"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers/openrouter"
)

func init() {
	Register(providers.Default())
}

// Register adds the search backends to r in listing order: claude,
// openrouter, ollama, mcp.
func Register(r *providers.Registry) {
	r.Register(claude.Name, claude.New)
	r.Register(openrouter.Name, openrouter.New)
	r.Register(ollama.Name, ollama.New)
	r.Register(mcp.Name, mcp.New)
}
