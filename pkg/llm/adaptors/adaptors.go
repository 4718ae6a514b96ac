// Package adaptors registers every vendor adaptor with the llm registry.
// Import it for side effects.
package adaptors

import (
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptor/claude"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptor/gemini"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptor/generic"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptor/ollama"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptor/openai"
)
