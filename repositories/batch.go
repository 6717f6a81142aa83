package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// Firestore commits at most 500 writes per batch.
const maxBatchWrites = 500

// commitChunked applies op to every ref, committing in atomic chunks of up to
// maxBatchWrites. Chunks are independent: a failed chunk leaves earlier
// chunks committed, which the sweeps tolerate (a retried sweep re-matches
// only the remaining documents).
func commitChunked(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef, op func(*firestore.WriteBatch, *firestore.DocumentRef)) error {
	for start := 0; start < len(refs); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(refs) {
			end = len(refs)
		}

		batch := client.Batch()
		for _, ref := range refs[start:end] {
			op(batch, ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit batch of %d writes: %w", end-start, err)
		}
	}
	return nil
}
