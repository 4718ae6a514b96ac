package providers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

type stubProvider struct{ name string }

func (s *stubProvider) Search(ctx context.Context, query string, info providers.Query) providers.SearchResult {
	return providers.Succeeded(info, "ok: "+query)
}
func (s *stubProvider) ValidateConfig(ctx context.Context) bool { return true }
func (s *stubProvider) RequiredEnvVars() []string               { return nil }
func (s *stubProvider) Name() string                            { return s.name }

func stubFactory(name string) providers.Factory {
	return func(cfg *config.Config, deps providers.Deps) (providers.Provider, error) {
		return &stubProvider{name: name}, nil
	}
}

func TestRegistryCreateIsCaseInsensitive(t *testing.T) {
	reg := providers.NewRegistry()
	reg.Register("zeta", stubFactory("zeta"))
	reg.Register("Alpha", stubFactory("alpha"))

	p, err := reg.Create("  ALPHA ", nil, providers.Deps{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != "alpha" {
		t.Fatalf("Name() = %q", p.Name())
	}
}

func TestRegistryListKeepsRegistrationOrder(t *testing.T) {
	reg := providers.NewRegistry()
	reg.Register("zeta", stubFactory("zeta"))
	reg.Register("alpha", stubFactory("alpha"))
	reg.Register("zeta", stubFactory("zeta2"))

	want := []string{"zeta", "alpha"}
	for i := 0; i < 3; i++ {
		if got := reg.List(); !reflect.DeepEqual(got, want) {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	reg := providers.NewRegistry()
	reg.Register("claude", stubFactory("claude"))
	reg.Register("ollama", stubFactory("ollama"))

	_, err := reg.Create("gopher", nil, providers.Deps{})
	var unknown *providers.UnknownProviderError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProviderError, got %v", err)
	}
	if unknown.Name != "gopher" {
		t.Errorf("Name = %q", unknown.Name)
	}
	if !reflect.DeepEqual(unknown.Available, []string{"claude", "ollama"}) {
		t.Errorf("Available = %v", unknown.Available)
	}
	if !strings.Contains(err.Error(), "claude, ollama") {
		t.Errorf("message should list providers: %v", err)
	}
}

func TestUnknownProviderKeepsTypedName(t *testing.T) {
	reg := providers.NewRegistry()
	reg.Register("claude", stubFactory("claude"))

	_, err := reg.Create(" Gopher ", nil, providers.Deps{})
	var unknown *providers.UnknownProviderError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownProviderError, got %v", err)
	}
	if unknown.Name != " Gopher " {
		t.Fatalf("Name = %q, want the name as given", unknown.Name)
	}
	if !strings.Contains(err.Error(), `" Gopher "`) {
		t.Fatalf("message should quote the input: %v", err)
	}
}

func TestRegistryWrapsFactoryError(t *testing.T) {
	reg := providers.NewRegistry()
	reg.Register("broken", func(cfg *config.Config, deps providers.Deps) (providers.Provider, error) {
		return nil, &providers.UnavailableError{Provider: "broken", Capability: "sdk", Reason: "missing"}
	})

	_, err := reg.Create("broken", nil, providers.Deps{})
	var unavailable *providers.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestResultHelpers(t *testing.T) {
	info := providers.Query{Text: "q", Category: providers.CategoryAdhoc}

	ok := providers.Succeeded(info, "text")
	if !ok.Success || ok.Error != "" || ok.Timestamp == "" {
		t.Fatalf("Succeeded = %+v", ok)
	}

	failed := providers.Failed(info, errors.New("boom"))
	if failed.Success || failed.Error != "boom" || failed.Text != "" {
		t.Fatalf("Failed = %+v", failed)
	}

	batch := providers.ResultBatch{Results: []providers.SearchResult{ok, failed, ok}}
	if batch.CountSuccessful() != 2 {
		t.Fatalf("CountSuccessful = %d", batch.CountSuccessful())
	}
}

func TestDotEnvLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "ANTHROPIC_API_KEY=from-file\nOPENROUTER_API_KEY=file-router\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	env, err := providers.LoadDotEnv(path, providers.MapEnv{"ANTHROPIC_API_KEY": "from-env"})
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := providers.Getenv(env, "ANTHROPIC_API_KEY"); got != "from-env" {
		t.Errorf("process value should win, got %q", got)
	}
	if got := providers.Getenv(env, "OPENROUTER_API_KEY"); got != "file-router" {
		t.Errorf("file value missing, got %q", got)
	}
	if missing := providers.MissingEnv(env, []string{"ANTHROPIC_API_KEY", "SERPAPI_API_KEY"}); !reflect.DeepEqual(missing, []string{"SERPAPI_API_KEY"}) {
		t.Errorf("MissingEnv = %v", missing)
	}
}

func TestDotEnvMissingFile(t *testing.T) {
	env, err := providers.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"), providers.MapEnv{})
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if _, ok := env.Lookup("ANY"); ok {
		t.Fatal("expected empty env")
	}
}

func TestFatalOrchestrationErrorListsAttempts(t *testing.T) {
	err := &providers.FatalOrchestrationError{Attempts: []providers.Attempt{
		{Provider: "claude", Reason: "validation failed"},
		{Provider: "gopher", Reason: "unknown provider"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "claude: validation failed") || !strings.Contains(msg, "gopher: unknown provider") {
		t.Fatalf("message = %q", msg)
	}
}
