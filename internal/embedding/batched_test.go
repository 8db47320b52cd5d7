package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatchedPreservesOrder(t *testing.T) {
	provider := NewMockProvider(8, "v1")
	texts := []string{"a", "b", "c", "d", "e"}

	batched, err := EmbedBatched(context.Background(), provider, texts, 2, nil)
	require.NoError(t, err)

	direct, err := provider.Embed(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, direct, batched)
}

func TestEmbedBatchedReportsProgress(t *testing.T) {
	provider := NewMockProvider(8, "v1")
	texts := []string{"a", "b", "c", "d", "e"}
	progressCh := make(chan BatchProgress, 10)

	_, err := EmbedBatched(context.Background(), provider, texts, 2, progressCh)
	require.NoError(t, err)
	close(progressCh)

	var last BatchProgress
	count := 0
	for p := range progressCh {
		count++
		last = p
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, 5, last.ProcessedTexts)
	assert.Equal(t, 5, last.TotalTexts)
}

func TestEmbedBatchedEmptyInput(t *testing.T) {
	provider := NewMockProvider(8, "v1")
	result, err := EmbedBatched(context.Background(), provider, nil, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
