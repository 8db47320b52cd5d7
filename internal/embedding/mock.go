package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// MockProvider generates deterministic embeddings from a text hash. It
// exists for tests that need stable vectors without a real model.
type MockProvider struct {
	mu          sync.Mutex
	dimensions  int
	version     string
	closeCalled bool
	embedError  error
}

// NewMockProvider returns a mock provider producing vectors of the given
// dimensionality, tagged with version (defaults to "mock-1" if empty).
func NewMockProvider(dimensions int, version string) *MockProvider {
	if version == "" {
		version = "mock-1"
	}
	return &MockProvider{dimensions: dimensions, version: version}
}

// SetEmbedError makes every subsequent Embed call fail with err until it is
// called again with nil.
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedError = err
}

// IsClosed reports whether Close has been called.
func (p *MockProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalled
}

// Embed hashes each text into a deterministic vector in [-1, 1].
func (p *MockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedError != nil {
		return nil, p.embedError
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(p.version + "\x00" + text))
		vec := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (p *MockProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

func (p *MockProvider) Version() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalled = true
	return nil
}
