package core

import (
	"context"
)

// TextGenerator defines the interface for the external text-generation
// collaborator. Implementations must honor ctx cancellation and report an
// unconfigured or unloaded backend with ErrGeneratorNotLoaded rather than
// returning an empty string.
type TextGenerator interface {
	// Generate produces text for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// CacheRepository defines the interface for caching generated responses by
// prompt key. The cache is a latency optimization wrapped around a
// TextGenerator, never a property of the pipeline itself.
type CacheRepository interface {
	// Get retrieves a cached entry for a prompt key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
