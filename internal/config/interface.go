package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads manifests from the given paths, translates them into the
	// format-agnostic model and validates the result.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
