package backends

import (
	"reflect"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

func TestRegisterKeepsListingOrder(t *testing.T) {
	want := []string{"claude", "openrouter", "ollama", "mcp"}

	r := providers.NewRegistry()
	Register(r)
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	if got := providers.Default().List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Default().List() = %v, want %v", got, want)
	}
}
