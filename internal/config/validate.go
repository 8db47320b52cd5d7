package config

import "fmt"

// Validate checks a Config for internally-consistent values. It rejects
// negative weights and ceilings that would make traversal/search undefined.
func Validate(c *Config) error {
	w := c.Search.DefaultWeights
	if w.Text < 0 || w.Semantic < 0 || w.Quality < 0 {
		return fmt.Errorf("search weights must be non-negative, got %+v", w)
	}
	if w.Text+w.Semantic+w.Quality == 0 {
		return fmt.Errorf("search weights must not all be zero")
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit (%d) must be >= search.default_limit (%d)", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Resolver.MaxDepth <= 0 {
		return fmt.Errorf("resolver.max_depth must be positive, got %d", c.Resolver.MaxDepth)
	}
	if c.Resolver.MaxVisited <= 0 {
		return fmt.Errorf("resolver.max_visited must be positive, got %d", c.Resolver.MaxVisited)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Storage.MaxContentBytes <= 0 {
		return fmt.Errorf("storage.max_content_bytes must be positive, got %d", c.Storage.MaxContentBytes)
	}
	return nil
}
