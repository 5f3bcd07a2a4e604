package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/vk/scriptvars/internal/broadcast"
	"github.com/vk/scriptvars/internal/ctxlog"
	"github.com/vk/scriptvars/internal/remote"
)

const (
	snapshotTimeout = 5 * time.Second
	requestTimeout  = 5 * time.Second
)

// Watch connects to a hub, prints its registries and then every change
// until ctx is cancelled.
func Watch(ctx context.Context, outW io.Writer, cfg *Config) error {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)

	client, err := remote.Dial(ctx, cfg.RemoteURL, cfg.Namespace)
	if err != nil {
		return err
	}
	defer client.Close()

	// Listener callbacks run on the client's goroutines.
	var mu sync.Mutex
	client.OnChange(func(c broadcast.Change) {
		if cfg.Registry != "" && c.Registry != cfg.Registry {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(outW, "%s.%s = %s\n", c.Registry, c.Name, c.Value)
	})
	client.OnSignal(func(s broadcast.Signal) {
		if cfg.Registry != "" && s.Registry != cfg.Registry {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(outW, "%s.%s fired\n", s.Registry, s.Name)
	})

	snapCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	docs, err := client.Snapshot(snapCtx)
	cancel()
	if err != nil {
		return err
	}

	mu.Lock()
	for _, doc := range docs {
		if cfg.Registry != "" && doc.ContainerName != cfg.Registry {
			continue
		}
		for _, rec := range doc.Variables {
			fmt.Fprintf(outW, "%s.%s = %s\n", doc.ContainerName, rec.Name, rec.Value)
		}
	}
	mu.Unlock()

	<-ctx.Done()
	return nil
}

// RemoteSet sends the configured assignments and signals to a hub and waits
// for the hub to acknowledge each one. Assignment names must be qualified as
// registry.name unless a registry is configured. Every refused or
// unanswered request is part of the returned error.
func RemoteSet(ctx context.Context, outW io.Writer, cfg *Config) error {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)

	client, err := remote.Dial(ctx, cfg.RemoteURL, cfg.Namespace)
	if err != nil {
		return err
	}
	defer client.Close()

	var errs []error
	for _, set := range cfg.Sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok {
			errs = append(errs, fmt.Errorf("-set %q: expected name=value", set))
			continue
		}
		reg, name, err := qualify(strings.TrimSpace(key), cfg.Registry)
		if err != nil {
			errs = append(errs, fmt.Errorf("-set %q: %w", set, err))
			continue
		}
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		err = client.Set(reqCtx, reg, name, value)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("-set %q: %w", set, err))
			continue
		}
		logger.Info("Assignment applied.", "registry", reg, "variable", name)
	}
	for _, sig := range cfg.Signals {
		reg, name, err := qualify(strings.TrimSpace(sig), cfg.Registry)
		if err == nil {
			reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			err = client.Signal(reqCtx, reg, name)
			cancel()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("-signal %q: %w", sig, err))
			continue
		}
		logger.Info("Signal fired.", "registry", reg, "event", name)
	}
	return errors.Join(errs...)
}

func qualify(key, defaultRegistry string) (string, string, error) {
	if reg, name, ok := strings.Cut(key, "."); ok {
		return reg, name, nil
	}
	if defaultRegistry == "" {
		return "", "", errors.New("name must be qualified as registry.name or -registry must be set")
	}
	return defaultRegistry, key, nil
}
