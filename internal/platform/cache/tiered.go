package cache

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/footyarchive/gamelog-api/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

const (
	sharedWriteWorkers = 4
	sharedWriteTimeout = 5 * time.Second
)

// Tiered composes the in-process Store with an optional shared tier.
// Reads check local first; a shared hit backfills local. Local writes are
// synchronous, shared writes run on a bounded worker pool so request
// latency never waits on the network.
type Tiered struct {
	local  *Store
	shared SharedStore
	logger *logging.Logger
	writes *ants.Pool
}

func NewTiered(local *Store, shared SharedStore, logger *logging.Logger) (*Tiered, error) {
	if local == nil {
		local = NewStore(0)
	}
	if logger == nil {
		logger = logging.Default()
	}

	writes, err := ants.NewPool(sharedWriteWorkers)
	if err != nil {
		return nil, fmt.Errorf("create shared cache write pool: %w", err)
	}

	return &Tiered{
		local:  local,
		shared: shared,
		logger: logger,
		writes: writes,
	}, nil
}

func (t *Tiered) Close() {
	if t != nil && t.writes != nil {
		t.writes.Release()
	}
}

// Get loads key from the cache tiers. Local values are stored decoded;
// shared values round-trip through JSON. backfillTTL bounds the lifetime of
// a local entry rebuilt from a shared hit; the shared entry's remaining TTL
// caps it further so a value never outlives its shared deadline locally.
func Get[T any](ctx context.Context, t *Tiered, key string, backfillTTL time.Duration) (T, bool) {
	var zero T
	if t == nil || key == "" {
		return zero, false
	}

	if value, ok := t.local.Get(ctx, key); ok {
		if typed, matches := value.(T); matches {
			return typed, true
		}
		// A key reused with a different type cannot serve anyone.
		t.local.Delete(ctx, key)
	}

	if t.shared == nil {
		return zero, false
	}

	payload, ok, err := t.shared.Get(ctx, key)
	if err != nil {
		t.logger.WarnContext(ctx, "shared cache read failed", "key", key, "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var decoded T
	if err := sonic.UnmarshalString(payload, &decoded); err != nil {
		t.logger.WarnContext(ctx, "shared cache payload decode failed", "key", key, "error", err)
		if delErr := t.shared.Delete(ctx, key); delErr != nil {
			t.logger.WarnContext(ctx, "shared cache evict failed", "key", key, "error", delErr)
		}
		return zero, false
	}

	ttl := backfillTTL
	if remaining, ttlErr := t.shared.TTL(ctx, key); ttlErr == nil && remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	t.local.SetWithTTL(ctx, key, decoded, ttl)
	return decoded, true
}

// Set writes value to both tiers with the given lifetime.
func Set[T any](ctx context.Context, t *Tiered, key string, value T, ttl time.Duration) {
	if t == nil || key == "" {
		return
	}

	t.local.SetWithTTL(ctx, key, value, ttl)

	if t.shared == nil {
		return
	}

	payload, err := sonic.MarshalString(value)
	if err != nil {
		t.logger.WarnContext(ctx, "shared cache payload encode failed", "key", key, "error", err)
		return
	}

	if err := t.writes.Submit(func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), sharedWriteTimeout)
		defer cancel()
		if err := t.shared.Set(writeCtx, key, payload, ttl); err != nil {
			t.logger.Warn("shared cache write failed", "key", key, "error", err)
		}
	}); err != nil {
		t.logger.WarnContext(ctx, "shared cache write not scheduled", "key", key, "error", err)
	}
}
