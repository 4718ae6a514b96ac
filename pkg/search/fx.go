package search

import (
	"os"

	"go.uber.org/fx"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/providers/backends"
	"github.com/michaelcolletti/venue-research-agent/pkg/state"
)

// Module provides the provider registry, provider deps and the
// Orchestrator. It expects config, logger and state in the graph.
var Module = fx.Module("search",
	fx.Provide(providers.Default),
	fx.Provide(ProvideDeps),
	fx.Provide(ProvideOrchestrator),
)

// ProvideDeps layers settings.env_file under the process environment.
func ProvideDeps(cfg *config.Config, log *logger.Logger) (providers.Deps, error) {
	env, err := providers.LoadDotEnv(cfg.Settings.EnvFile, providers.OSEnv{})
	if err != nil {
		return providers.Deps{}, err
	}
	return providers.Deps{Env: env, Log: log, Out: os.Stdout}, nil
}

// ProvideOrchestrator wires the orchestrator to stdout.
func ProvideOrchestrator(cfg *config.Config, reg *providers.Registry, deps providers.Deps, kv state.KV, log *logger.Logger) *Orchestrator {
	return NewOrchestrator(cfg, Options{
		Registry: reg,
		Deps:     deps,
		State:    kv,
		Out:      os.Stdout,
		Log:      log,
	})
}
