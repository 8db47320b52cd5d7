// Package embedding wraps the embedding model behind a small, opaque
// Provider contract and a version-keyed cache, matching the registry's
// treatment of embedding generation as a pure function modulo provider
// version.
package embedding

import "context"

// Provider converts text into fixed-dimension vectors. Implementations may
// call a local model, a remote API, or (for tests) a deterministic stub.
type Provider interface {
	// Embed generates a vector for each text. Results are treated as pure
	// given (Version(), text) and may be cached on that basis.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of every vector Embed produces.
	Dimensions() int

	// Version identifies the model/config generating vectors; it is part
	// of the cache key so a version bump invalidates stale entries.
	Version() string

	// Close releases any resources held by the provider.
	Close() error
}
