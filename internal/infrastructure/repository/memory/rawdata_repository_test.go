package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footyarchive/gamelog-api/internal/domain/rawdata"
)

func TestRawDataRepository_UpsertReplacesExisting(t *testing.T) {
	t.Parallel()

	repo := NewRawDataRepository()
	ctx := context.Background()

	first := rawdata.Payload{
		Source:      "afltables",
		EntityKey:   "https://afltables.com/afl/stats/players/M/Matthew_Richardson.html",
		Body:        "<html>v1</html>",
		PayloadHash: "hash-1",
		FetchedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, first))
	require.Equal(t, 1, repo.Len())

	second := first
	second.Body = "<html>v2</html>"
	second.PayloadHash = "hash-2"
	require.NoError(t, repo.Upsert(ctx, second))
	require.Equal(t, 1, repo.Len())

	got, ok, err := repo.Get(ctx, first.Source, first.EntityKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hash-2", got.PayloadHash)
	require.Equal(t, "<html>v2</html>", got.Body)
}

func TestRawDataRepository_KeysBySourceAndEntity(t *testing.T) {
	t.Parallel()

	repo := NewRawDataRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rawdata.Payload{Source: "afltables", EntityKey: "page-a"}))
	require.NoError(t, repo.Upsert(ctx, rawdata.Payload{Source: "other", EntityKey: "page-a"}))
	require.Equal(t, 2, repo.Len())

	_, ok, err := repo.Get(ctx, "afltables", "page-b")
	require.NoError(t, err)
	require.False(t, ok)
}
