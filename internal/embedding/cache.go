package embedding

import (
	"context"

	"github.com/maypok86/otter"

	"github.com/cadi-dev/cadi/internal/cadierrors"
)

const defaultCacheSize = 50_000

// cachedProvider decorates a Provider with a cache keyed by
// (provider_version, text), so repeated ingests of identical content never
// recompute a vector the provider has already produced under this version.
type cachedProvider struct {
	inner Provider
	cache otter.Cache[string, []float32]
}

// WithCache wraps provider in an in-memory cache of the given capacity (0
// uses a sensible default). The cache key includes provider.Version(), so
// a version bump never serves stale vectors.
func WithCache(provider Provider, capacity int) (Provider, error) {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	cache, err := otter.MustBuilder[string, []float32](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, cadierrors.Wrap(cadierrors.IOFailure, "building embedding cache", err)
	}
	return &cachedProvider{inner: provider, cache: cache}, nil
}

func (c *cachedProvider) cacheKey(text string) string {
	return c.inner.Version() + "\x00" + text
}

// Embed serves cached vectors where present and only calls the wrapped
// provider for the texts that missed.
func (c *cachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if vec, ok := c.cache.Get(c.cacheKey(text)); ok {
			results[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range fresh {
		i := missIdx[j]
		results[i] = vec
		c.cache.Set(c.cacheKey(missTexts[j]), vec)
	}
	return results, nil
}

func (c *cachedProvider) Dimensions() int { return c.inner.Dimensions() }
func (c *cachedProvider) Version() string { return c.inner.Version() }

func (c *cachedProvider) Close() error {
	c.cache.Clear()
	return c.inner.Close()
}
