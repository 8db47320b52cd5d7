// Package chunkstore persists immutable, content-addressed chunks: the
// Chunk Store component described alongside the registry's other CORE
// subsystems. Chunk identity is a pure function of content and language, so
// put is idempotent and get always returns exact original bytes.
package chunkstore

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Chunk is an immutable, content-addressed unit of source.
type Chunk struct {
	ID        string
	Content   []byte
	Language  string
	Namespace string
	CreatedAt time.Time
}

// ID computes the content-addressed identifier "chunk:sha256:<hex>" for the
// given content and language tag. Bitwise-equal (content, language) pairs
// always yield the same id.
func ID(content []byte, language string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(language))
	return "chunk:sha256:" + hex.EncodeToString(h.Sum(nil))
}
