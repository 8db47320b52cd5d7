package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadi-dev/cadi/internal/cadierrors"
	"github.com/cadi-dev/cadi/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := storage.OpenTestDB(t, 8)
	return NewStore(db)
}

func testInterface(chunkID string) ComponentInterface {
	return ComponentInterface{
		ChunkID:           chunkID,
		Name:              "Widget",
		Signature:         "func Widget() error",
		Summary:           "does widget things",
		Role:              RoleComponent,
		Inputs:            []Input{{Name: "x", TypeSignature: "int", Required: true}},
		Output:            "error",
		Methods:           []Method{{Name: "Run", Params: "", Return: "error"}},
		Endpoints:         nil,
		Dependencies:      []string{"fmt"},
		SideEffects:       []string{SideEffectNone},
		UsageExamples:     nil,
		CompatibleWith:    []Compatible{{ChunkID: "other", Mode: "direct"}},
		Concepts:          []string{"widget"},
		Quality:           Quality{UsageCount: 2, TestCoverage: 0.5, AvgScore: 0.9},
		Degraded:          false,
		Confidence:        1.0,
		NormalizerVersion: "norm-1",
		ExtractorVersion:  ExtractorVersion,
	}
}

func TestPutAndGetRoundTrips(t *testing.T) {
	s := newTestStore(t)
	iface := testInterface("chunk:sha256:abc")

	require.NoError(t, s.Put(iface))

	got, err := s.Get("chunk:sha256:abc")
	require.NoError(t, err)
	assert.Equal(t, iface, got)
}

func TestPutReplacesExistingInterface(t *testing.T) {
	s := newTestStore(t)
	iface := testInterface("chunk:sha256:abc")
	require.NoError(t, s.Put(iface))

	iface.Name = "Renamed"
	require.NoError(t, s.Put(iface))

	got, err := s.Get("chunk:sha256:abc")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("chunk:sha256:missing")
	require.Error(t, err)
	assert.True(t, cadierrors.Is(err, cadierrors.NotFound))
}

func TestDeleteRemovesInterface(t *testing.T) {
	s := newTestStore(t)
	iface := testInterface("chunk:sha256:abc")
	require.NoError(t, s.Put(iface))

	require.NoError(t, s.Delete("chunk:sha256:abc"))

	_, err := s.Get("chunk:sha256:abc")
	assert.True(t, cadierrors.Is(err, cadierrors.NotFound))
}

func TestDeleteNonexistentIsNoop(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Delete("chunk:sha256:missing"))
}
