// Package interfaces derives a ComponentInterface — a compact, agent-facing
// summary of a chunk's shape — from chunk content. Extraction is a pure
// function of (chunk bytes, language, adapter version); it never fails the
// enclosing ingest, degrading to a minimal interface instead.
package interfaces

// ExtractorVersion identifies the extraction rule set. Recorded alongside
// every ComponentInterface so a version bump can trigger recomputation.
const ExtractorVersion = "extract-1"

// Input describes one parameter of a chunk's primary callable.
type Input struct {
	Name          string `json:"name"`
	TypeSignature string `json:"type_signature"`
	Required      bool   `json:"required"`
}

// Method describes one exported callable on a compound chunk.
type Method struct {
	Name   string `json:"name"`
	Params string `json:"params"`
	Return string `json:"return"`
}

// Endpoint describes a wire surface the chunk exposes.
type Endpoint struct {
	HTTPMethod string `json:"http_method"`
	Path       string `json:"path"`
}

// Compatible names another chunk this one can be composed with, and how.
type Compatible struct {
	ChunkID string `json:"chunk_id"`
	Mode    string `json:"mode"` // direct, middleware, adapter
}

// Quality is the usage-derived quality signal attached to an interface.
type Quality struct {
	UsageCount   int     `json:"usage_count"`
	TestCoverage float64 `json:"test_coverage"`
	AvgScore     float64 `json:"avg_score"`
}

// Side-effect tags, the closed vocabulary from the pattern dictionary.
const (
	SideEffectNetwork    = "network"
	SideEffectFilesystem = "filesystem"
	SideEffectClock      = "clock"
	SideEffectRandomness = "randomness"
	SideEffectProcess    = "process"
	SideEffectGPU        = "gpu"
	SideEffectNone       = "none"
)

// Role values inferred from structural cues.
const (
	RoleAPIHandler = "api-handler"
	RoleDataLayer  = "data-layer"
	RoleTypes      = "types"
	RoleComponent  = "component"
)

// ComponentInterface is the derived, agent-facing summary of a chunk.
type ComponentInterface struct {
	ChunkID       string       `json:"chunk_id"`
	Name          string       `json:"name"`
	Signature     string       `json:"signature"`
	Summary       string       `json:"summary"`
	Role          string       `json:"role"`
	Inputs        []Input      `json:"inputs"`
	Output        string       `json:"output"`
	Methods       []Method     `json:"methods"`
	Endpoints     []Endpoint   `json:"endpoints"`
	Dependencies  []string     `json:"dependencies"`
	SideEffects   []string     `json:"side_effects"`
	UsageExamples []string     `json:"usage_examples"`
	CompatibleWith []Compatible `json:"compatible_with"`
	Concepts      []string     `json:"concepts"`
	Quality       Quality      `json:"quality"`

	Degraded          bool    `json:"degraded"`
	Confidence        float64 `json:"confidence"`
	NormalizerVersion string  `json:"normalizer_version"`
	ExtractorVersion  string  `json:"extractor_version"`
}

// Extractor derives a ComponentInterface from one chunk's content.
type Extractor interface {
	Extract(chunkID string, content []byte) ComponentInterface
}

// For returns the Extractor registered for language, or the generic
// fallback extractor.
func For(language string) Extractor {
	if e, ok := registry[language]; ok {
		return e
	}
	return genericExtractor{language: language}
}

var registry = map[string]Extractor{
	"go": goExtractor{},
}
