package rawdata

import "context"

type Repository interface {
	// Upsert stores a page snapshot, replacing any previous snapshot of
	// the same source and entity key.
	Upsert(ctx context.Context, item Payload) error

	// Get loads the stored snapshot for a source and entity key. A
	// missing snapshot is (_, false, nil), not an error.
	Get(ctx context.Context, source, entityKey string) (Payload, bool, error)
}
