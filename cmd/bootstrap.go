package cmd

import (
	"fmt"
	"io"

	"github.com/initializ/gemini-bridge/config"
	"github.com/initializ/gemini-bridge/gemini"
	coreruntime "github.com/initializ/gemini-bridge/runtime"
	"github.com/initializ/gemini-bridge/tools"
	"github.com/initializ/gemini-bridge/tools/builtins"
	"github.com/initializ/gemini-bridge/types"
)

// loadConfig reads the config file and applies flag and env overrides.
func loadConfig() (*types.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ApplyOverrides(cfg, settings); err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *types.Config, w io.Writer) (coreruntime.Logger, error) {
	return coreruntime.NewLogger(w, cfg.Log.Level, cfg.Log.Format)
}

func newExecutor(cfg *types.Config, logger coreruntime.Logger) *gemini.Executor {
	return gemini.NewExecutor(gemini.Config{
		Binary:         cfg.Gemini.Binary,
		DefaultModel:   cfg.Gemini.DefaultModel,
		FallbackModel:  cfg.Gemini.FallbackModel,
		EnvPassthrough: cfg.Gemini.EnvPassthrough,
		Timeout:        cfg.Gemini.TimeoutDuration(),
		MaxOutputBytes: cfg.Gemini.MaxOutputBytes,
		WorkDir:        cfg.Gemini.WorkDir,
	}, logger)
}

// newRegistry registers the built-in tools and narrows them to the
// configured allowlist.
func newRegistry(cfg *types.Config, executor tools.Executor) (*tools.Registry, error) {
	reg := tools.NewRegistry()
	if err := builtins.RegisterAll(reg, executor); err != nil {
		return nil, fmt.Errorf("registering builtins: %w", err)
	}
	for _, name := range cfg.Server.Tools {
		if reg.Get(name) == nil {
			return nil, fmt.Errorf("server.tools: unknown tool %q", name)
		}
	}
	return reg.Filter(cfg.Server.Tools), nil
}
