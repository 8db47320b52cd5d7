package cadierrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNilCauseReturnsNil(t *testing.T) {
	err := Wrap(NotFound, "chunk missing", nil)
	assert.Nil(t, err)
}

func TestKindOfRoundTrips(t *testing.T) {
	inner := fmt.Errorf("disk exploded")
	err := Wrap(IOFailure, "writing chunk", inner)
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, IOFailure, kind)
	assert.True(t, Is(err, IOFailure))
	assert.False(t, Is(err, NotFound))
}

func TestKindOfUnknownError(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := New(InvalidInput, "empty content")
	assert.Equal(t, "InvalidInput: empty content", err.Error())

	wrapped := Wrap(ParseError, "lexing failed", fmt.Errorf("eof"))
	assert.Contains(t, wrapped.Error(), "lexing failed")
	assert.Contains(t, wrapped.Error(), "eof")
}
