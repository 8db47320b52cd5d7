// Package config holds CADI's immutable process configuration: search
// weights, traversal ceilings, query deadlines, and storage location. A
// Config is constructed once per process and passed explicitly through
// constructors — there is no package-level mutable state (Design Notes §9).
package config

import "time"

// Config is the complete CADI runtime configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding" mapstructure:"embedding"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Resolver   ResolverConfig   `yaml:"resolver" mapstructure:"resolver"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Derivation DerivationConfig `yaml:"derivation" mapstructure:"derivation"`
}

// StorageConfig points at the backing SQLite database.
type StorageConfig struct {
	Path            string `yaml:"path" mapstructure:"path"` // e.g. ".cadi/cadi.db"
	MaxContentBytes int    `yaml:"max_content_bytes" mapstructure:"max_content_bytes"`
}

// EmbeddingConfig configures the embedding provider and its cache.
type EmbeddingConfig struct {
	Dimensions int           `yaml:"dimensions" mapstructure:"dimensions"`
	CacheSize  int           `yaml:"cache_size" mapstructure:"cache_size"` // max cached (version,text)->vector entries
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SearchWeights controls the hybrid search score fusion (spec.md §4.7).
type SearchWeights struct {
	Text     float64 `yaml:"text" mapstructure:"text"`
	Semantic float64 `yaml:"semantic" mapstructure:"semantic"`
	Quality  float64 `yaml:"quality" mapstructure:"quality"`
}

// SearchConfig configures the hybrid search default behavior.
type SearchConfig struct {
	DefaultWeights SearchWeights `yaml:"default_weights" mapstructure:"default_weights"`
	DefaultLimit   int           `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit       int           `yaml:"max_limit" mapstructure:"max_limit"`
	QueryDeadline  time.Duration `yaml:"query_deadline" mapstructure:"query_deadline"`
}

// ResolverConfig bounds dependency traversal (spec.md §5 resource bounds).
type ResolverConfig struct {
	MaxDepth   int `yaml:"max_depth" mapstructure:"max_depth"`
	MaxVisited int `yaml:"max_visited" mapstructure:"max_visited"`
}

// DedupConfig controls how the reconciliation sweep batches work.
type DedupConfig struct {
	ReconcileBatchSize int `yaml:"reconcile_batch_size" mapstructure:"reconcile_batch_size"`
}

// DerivationConfig pins the versions stamped onto derived artifacts so
// staleness is detectable per spec.md §6.4 / Design Notes §9.
type DerivationConfig struct {
	NormalizerVersion string `yaml:"normalizer_version" mapstructure:"normalizer_version"`
	ExtractorVersion  string `yaml:"extractor_version" mapstructure:"extractor_version"`
}

// Default returns a configuration with sensible defaults, mirroring the
// teacher's Default() in shape (every field explicit, no zero-value surprises).
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:            ".cadi/cadi.db",
			MaxContentBytes: 1 << 20, // 1 MiB per chunk
		},
		Embedding: EmbeddingConfig{
			Dimensions: 768,
			CacheSize:  10_000,
			Timeout:    10 * time.Second,
		},
		Search: SearchConfig{
			DefaultWeights: SearchWeights{Text: 0.3, Semantic: 0.5, Quality: 0.2},
			DefaultLimit:   10,
			MaxLimit:       100,
			QueryDeadline:  2 * time.Second,
		},
		Resolver: ResolverConfig{
			MaxDepth:   8,
			MaxVisited: 50_000,
		},
		Dedup: DedupConfig{
			ReconcileBatchSize: 500,
		},
		Derivation: DerivationConfig{
			NormalizerVersion: "norm-1",
			ExtractorVersion:  "extract-1",
		},
	}
}
