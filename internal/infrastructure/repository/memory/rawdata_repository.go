package memory

import (
	"context"
	"sync"

	"github.com/footyarchive/gamelog-api/internal/domain/rawdata"
)

// RawDataRepository keeps page snapshots in memory. Used when the payload
// archive database is disabled and in tests.
type RawDataRepository struct {
	mu    sync.RWMutex
	items map[string]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{
		items: make(map[string]rawdata.Payload),
	}
}

func (r *RawDataRepository) Upsert(_ context.Context, item rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.Source+"|"+item.EntityKey] = item
	return nil
}

func (r *RawDataRepository) Get(_ context.Context, source, entityKey string) (rawdata.Payload, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[source+"|"+entityKey]
	return item, ok, nil
}

func (r *RawDataRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
