package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/scriptvars/internal/config"
	"github.com/vk/scriptvars/internal/history"
	"github.com/vk/scriptvars/internal/registry"
	"github.com/vk/scriptvars/internal/variable"
)

// statePath resolves where def is saved. Relative save paths are taken
// from the state directory.
func (a *App) statePath(def *config.RegistryDefinition) string {
	if def.SavePath == "" {
		return filepath.Join(a.config.StateDir, def.Name+".json")
	}
	if filepath.IsAbs(def.SavePath) {
		return def.SavePath
	}
	return filepath.Join(a.config.StateDir, def.SavePath)
}

// StatePath returns the state file of the registry called name.
func (a *App) StatePath(name string) string {
	return a.statePaths[name]
}

// restore loads reg's state file. A first run has no file yet, which is
// not worth a warning.
func (a *App) restore(reg *registry.Registry) {
	if a.config.FromHistory && a.history != nil {
		a.restoreFromHistory(reg)
		return
	}
	path := a.statePaths[reg.Name()]
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		a.logger.Info("No saved state yet, using defaults.", "registry", reg.Name(), "path", path)
		return
	}
	if reg.LoadFromPath(path) {
		a.logger.Info("Restored saved state.", "registry", reg.Name(), "path", path)
	}
}

func (a *App) restoreFromHistory(reg *registry.Registry) {
	doc, err := a.history.Latest(a.ctx, reg.Name())
	if errors.Is(err, history.ErrNotFound) {
		a.logger.Info("No history recorded yet, using defaults.", "registry", reg.Name())
		return
	}
	if err != nil {
		a.logger.Error("Failed to read history.", "registry", reg.Name(), "error", err)
		return
	}
	report := reg.Apply(doc)
	a.logger.Info("Restored state from history.", "registry", reg.Name(), "saved", doc.SaveTime, "applied", len(report.Applied))
}

// ResetAll resets every registry.
func (a *App) ResetAll() {
	for _, reg := range a.registries {
		reg.ResetAll()
	}
}

// ApplySets applies "name=value" assignments. The name may be qualified as
// "registry.name"; an unqualified name must be unique across registries.
// Every assignment is attempted and the failures are joined.
func (a *App) ApplySets(sets []string) error {
	var errs []error
	for _, set := range sets {
		if err := a.applySet(set); err != nil {
			errs = append(errs, fmt.Errorf("-set %q: %w", set, err))
			continue
		}
		a.logger.Debug("Applied assignment.", "set", set)
	}
	return errors.Join(errs...)
}

func (a *App) applySet(set string) error {
	key, value, ok := strings.Cut(set, "=")
	if !ok {
		return errors.New("expected name=value")
	}
	e, err := a.resolve(strings.TrimSpace(key))
	if err != nil {
		return err
	}
	return e.DecodeValue(value)
}

func (a *App) resolve(key string) (variable.Entry, error) {
	if regName, name, ok := strings.Cut(key, "."); ok {
		if reg, found := a.Registry(regName); found {
			if e, found := reg.GetByName(name); found {
				return e, nil
			}
			return nil, fmt.Errorf("registry %q has no variable %q", regName, name)
		}
	}

	var match variable.Entry
	for _, reg := range a.registries {
		e, found := reg.GetByName(key)
		if !found {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("variable %q is ambiguous, qualify it as registry.%s", key, key)
		}
		match = e
	}
	if match == nil {
		return nil, fmt.Errorf("no variable %q", key)
	}
	return match, nil
}

// Save writes every registry to its state file and, when history is
// enabled, records the saved documents.
func (a *App) Save() error {
	var errs []error
	for _, reg := range a.registries {
		path := a.statePaths[reg.Name()]
		if !reg.SaveToPath(path) {
			errs = append(errs, fmt.Errorf("failed to save registry %q to %s", reg.Name(), path))
			continue
		}
		a.logger.Info("Saved registry.", "registry", reg.Name(), "path", path, "variables", reg.Len())

		if a.history == nil {
			continue
		}
		id, err := a.history.Record(a.ctx, reg.Snapshot())
		if err != nil {
			errs = append(errs, fmt.Errorf("record history for %q: %w", reg.Name(), err))
			continue
		}
		a.logger.Debug("Recorded history.", "registry", reg.Name(), "id", id)
	}
	return errors.Join(errs...)
}
