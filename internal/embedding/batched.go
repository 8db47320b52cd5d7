package embedding

import (
	"context"
	"fmt"
)

// BatchProgress reports batch-level progress for a large EmbedBatched call.
type BatchProgress struct {
	BatchIndex     int
	TotalBatches   int
	ProcessedTexts int
	TotalTexts     int
}

// EmbedBatched splits texts into batches of batchSize and embeds them
// sequentially, optionally reporting progress on progressCh (nil disables
// reporting). Results preserve input order.
func EmbedBatched(ctx context.Context, provider Provider, texts []string, batchSize int, progressCh chan<- BatchProgress) ([][]float32, error) {
	total := len(texts)
	if total == 0 {
		return [][]float32{}, nil
	}
	if batchSize <= 0 {
		batchSize = total
	}

	numBatches := (total + batchSize - 1) / batchSize
	results := make([][]float32, total)
	processed := 0

	for batch := 0; batch < numBatches; batch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := batch * batchSize
		end := start + batchSize
		if end > total {
			end = total
		}

		vectors, err := provider.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d failed: %w", batch+1, numBatches, err)
		}
		for i, vec := range vectors {
			results[start+i] = vec
		}

		processed += end - start
		if progressCh != nil {
			progressCh <- BatchProgress{
				BatchIndex:     batch + 1,
				TotalBatches:   numBatches,
				ProcessedTexts: processed,
				TotalTexts:     total,
			}
		}
	}

	return results, nil
}
