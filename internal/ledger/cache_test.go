package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchDocumentsPopulatesAndHits(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	loads := 0
	loader := func(ctx context.Context) ([]PayableDocument, error) {
		loads++
		return []PayableDocument{{ID: 1, Number: "FAC-1", Kind: KindInvoice}}, nil
	}

	key, err := c.BuildKey(ctx, ListKey(KindInvoice)...)
	require.NoError(t, err)

	docs, err := c.FetchDocuments(ctx, key, loader)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, 1, loads)

	docs, err = c.FetchDocuments(ctx, key, loader)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, 1, loads)
}

func TestCacheBumpInvalidatesKey(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	loads := 0
	loader := func(ctx context.Context) ([]PayableDocument, error) {
		loads++
		return []PayableDocument{{ID: 1}}, nil
	}

	key, err := c.BuildKey(ctx, ListKey(KindInvoice)...)
	require.NoError(t, err)
	_, err = c.FetchDocuments(ctx, key, loader)
	require.NoError(t, err)

	require.NoError(t, c.Bump(ctx))

	newKey, err := c.BuildKey(ctx, ListKey(KindInvoice)...)
	require.NoError(t, err)
	require.NotEqual(t, key, newKey)

	_, err = c.FetchDocuments(ctx, newKey, loader)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	key, err := c.BuildKey(ctx, ListKey(KindInvoice)...)
	require.NoError(t, err)

	docs, err := c.FetchDocuments(ctx, key, func(ctx context.Context) ([]PayableDocument, error) {
		return []PayableDocument{{ID: 9}}, nil
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, c.Bump(ctx))
}
