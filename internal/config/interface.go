package config

import "context"

// Loader is the interface for a format-specific declaration loader.
type Loader interface {
	// Load reads declarations from files or directories and translates them
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
