package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	cutoff int64
}

func (f *fakeSweeper) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

func TestEmbeddingCacheCleanupCutoff(t *testing.T) {
	sweeper := &fakeSweeper{}
	j := NewEmbeddingCacheCleanupJob(sweeper, 0)
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }

	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, now.AddDate(0, 0, -30).UnixMilli(), sweeper.cutoff)
	require.Equal(t, "embedding_cache_cleanup", j.Name())
}
