package embedcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/solpipe/internal/model"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) ModelName() string { return "test-model" }

type memCache struct {
	mu      sync.Mutex
	items   map[model.EmbeddingCacheKey][]float32
	saveErr error
}

func (m *memCache) Get(ctx context.Context, key model.EmbeddingCacheKey) ([]float32, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memCache) Save(ctx context.Context, item *model.EmbeddingCache) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.items == nil {
		m.items = map[model.EmbeddingCacheKey][]float32{}
	}
	m.items[item.EmbeddingCacheKey] = item.Embedding
	return nil
}

func TestLRUCachesByTextAndTask(t *testing.T) {
	next := &countingEmbedder{}
	e := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	first, err := e.Embed(ctx, "hello", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "hello", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, next.calls)

	_, err = e.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, 2, next.calls)

	second[0] = 99
	third, err := e.Embed(ctx, "hello", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, float32(5), third[0])
}

func TestLRUDisabled(t *testing.T) {
	next := &countingEmbedder{}
	require.Same(t, next, WrapLRU(next, 0, time.Minute))
	require.Same(t, next, WrapLRU(next, 8, 0))
}

func TestDBCache(t *testing.T) {
	next := &countingEmbedder{}
	store := &memCache{}
	e := WrapDB(next, store)
	ctx := context.Background()

	_, err := e.Embed(ctx, "chunk text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	_, err = e.Embed(ctx, "chunk text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 1, next.calls)
	require.Len(t, store.items, 1)
	for key := range store.items {
		require.Equal(t, "test-model", key.ModelName)
		require.Len(t, key.ContentHash, 64)
	}
}

func TestDBCacheSaveFailureIsNotFatal(t *testing.T) {
	next := &countingEmbedder{}
	e := WrapDB(next, &memCache{saveErr: errors.New("disk full")})
	res, err := e.Embed(context.Background(), "abc", "")
	require.NoError(t, err)
	require.Equal(t, []float32{3, 1}, res)
}

func TestEmbedErrorPropagates(t *testing.T) {
	next := &countingEmbedder{err: errors.New("quota")}
	_, err := WrapLRU(WrapDB(next, &memCache{}), 4, time.Minute).Embed(context.Background(), "x", "")
	require.ErrorIs(t, err, next.err)
}
