package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/scriptvars/internal/broadcast"
	"github.com/vk/scriptvars/internal/config"
	"github.com/vk/scriptvars/internal/ctxlog"
	"github.com/vk/scriptvars/internal/history"
	"github.com/vk/scriptvars/internal/registry"
	"github.com/vk/scriptvars/internal/variable"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	ctx    context.Context
	logger *slog.Logger
	config *Config
	model  *config.Model

	registries []*registry.Registry
	statePaths map[string]string

	history    *history.Store
	hub        *broadcast.Hub
	httpServer *http.Server
}

// NewApp builds the logger, loads every declaration, builds one registry per
// declared registry and restores each from its state file when one exists.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	defs, err := selectDefinitions(model, cfg.Registry)
	if err != nil {
		return nil, err
	}

	a := &App{
		outW:       outW,
		ctx:        ctx,
		logger:     logger,
		config:     cfg,
		model:      model,
		statePaths: make(map[string]string, len(defs)),
	}

	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		a.history = store
		logger.Debug("History store opened.", "path", cfg.HistoryPath)
	}

	for _, def := range defs {
		reg, err := buildRegistry(def, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.registries = append(a.registries, reg)
		a.statePaths[def.Name] = a.statePath(def)
		a.restore(reg)
	}

	logger.Debug("Application initialized.", "registries", len(a.registries))
	return a, nil
}

// Registries returns the application's registries in declaration order.
func (a *App) Registries() []*registry.Registry {
	return a.registries
}

// Registry returns the registry called name.
func (a *App) Registry(name string) (*registry.Registry, bool) {
	for _, reg := range a.registries {
		if reg.Name() == name {
			return reg, true
		}
	}
	return nil, false
}

// Close releases the history store and stops any running servers.
func (a *App) Close() error {
	a.stopServer()
	if a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}

func selectDefinitions(model *config.Model, only string) ([]*config.RegistryDefinition, error) {
	if only != "" {
		def, ok := model.Registries[only]
		if !ok {
			return nil, fmt.Errorf("registry %q is not declared", only)
		}
		return []*config.RegistryDefinition{def}, nil
	}
	defs := model.Ordered()
	if len(defs) == 0 {
		return nil, fmt.Errorf("no registry declared")
	}
	return defs, nil
}

func buildRegistry(def *config.RegistryDefinition, logger *slog.Logger) (*registry.Registry, error) {
	regLogger := logger.With("registry", def.Name)
	reg := registry.New(def.Name, registry.WithLogger(regLogger))

	for _, v := range def.Variables {
		factory, ok := variable.FactoryForTag(v.Kind)
		if !ok {
			return nil, fmt.Errorf("registry %q: variable %q has unknown kind %q", def.Name, v.Name, v.Kind)
		}
		opts := []variable.Option{variable.WithLogger(regLogger)}
		if v.NoReset {
			opts = append(opts, variable.WithoutReset())
		}
		entry, err := factory.Build(v.Name, v.Default, opts...)
		if err != nil {
			return nil, fmt.Errorf("registry %q: %w", def.Name, err)
		}
		if err := reg.Add(entry); err != nil {
			return nil, fmt.Errorf("registry %q: %w", def.Name, err)
		}
	}
	for _, e := range def.Events {
		if err := reg.AddEvent(variable.NewEvent(e.Name)); err != nil {
			return nil, fmt.Errorf("registry %q: %w", def.Name, err)
		}
	}
	return reg, nil
}
