// Package hashing computes the semantic_hash that the Deduplication Engine
// and equivalence queries key on: a digest of normalized bytes salted with
// the normalizer version and language tag so that bumping normalization
// never collides against hashes computed under an older version.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cadi-dev/cadi/internal/normalize"
)

// SemanticHash digests normalizerVersion || languageTag || normalizedBytes
// and returns the lowercase hex digest.
func SemanticHash(normalizerVersion, language string, normalizedBytes []byte) string {
	h := sha256.New()
	h.Write([]byte(normalizerVersion))
	h.Write([]byte{0})
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write(normalizedBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// Derive runs the language's Normalizer over source and returns its
// semantic hash plus whether normalization degraded to the lexical
// fallback.
func Derive(language string, source []byte) (hash string, degraded bool) {
	result := normalize.For(language).Normalize(source)
	return SemanticHash(normalize.Version, language, result.Bytes), result.Degraded
}
