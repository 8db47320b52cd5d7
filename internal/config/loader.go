package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration from a YAML file plus environment overrides.
type Loader interface {
	// Load loads configuration with precedence (highest to lowest):
	// environment variables (CADI_*) → .cadi/config.yml → defaults.
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader rooted at rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".cadi")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CADI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := Default()
	bindDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults + env only.
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// bindDefaults seeds viper with every default so AutomaticEnv can resolve
// keys that were never set by a file (viper only binds env vars for keys it
// already knows about).
func bindDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.cache_size", d.Embedding.CacheSize)
	v.SetDefault("embedding.timeout", d.Embedding.Timeout)
	v.SetDefault("search.default_weights.text", d.Search.DefaultWeights.Text)
	v.SetDefault("search.default_weights.semantic", d.Search.DefaultWeights.Semantic)
	v.SetDefault("search.default_weights.quality", d.Search.DefaultWeights.Quality)
	v.SetDefault("search.default_limit", d.Search.DefaultLimit)
	v.SetDefault("search.max_limit", d.Search.MaxLimit)
	v.SetDefault("search.query_deadline", d.Search.QueryDeadline)
	v.SetDefault("resolver.max_depth", d.Resolver.MaxDepth)
	v.SetDefault("resolver.max_visited", d.Resolver.MaxVisited)
	v.SetDefault("dedup.reconcile_batch_size", d.Dedup.ReconcileBatchSize)
	v.SetDefault("derivation.normalizer_version", d.Derivation.NormalizerVersion)
	v.SetDefault("derivation.extractor_version", d.Derivation.ExtractorVersion)
}
