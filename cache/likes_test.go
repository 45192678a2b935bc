package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmur/models"
	"murmur/repositories"
)

// stubRepo counts LikeCounts calls and serves fixed counts.
type stubRepo struct {
	repositories.MurmurRepository
	counts map[models.ID]int64
	calls  [][]models.ID
	// afterRead runs once, after the counts are read and before they return.
	afterRead func()
}

func (s *stubRepo) LikeCounts(_ context.Context, ids []models.ID) (map[models.ID]int64, error) {
	s.calls = append(s.calls, ids)
	out := make(map[models.ID]int64, len(ids))
	for _, id := range ids {
		out[id] = s.counts[id]
	}
	if fn := s.afterRead; fn != nil {
		s.afterRead = nil
		fn()
	}
	return out, nil
}

func (s *stubRepo) Like(context.Context, models.ID, models.ID) error {
	s.counts[1]++
	return nil
}

func (s *stubRepo) Unlike(context.Context, models.ID, models.ID) error {
	return repositories.ErrNotFound
}

func (s *stubRepo) Delete(context.Context, models.ID) error {
	return nil
}

func setup(t *testing.T) (*LikeCounts, *stubRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stub := &stubRepo{counts: map[models.ID]int64{1: 3, 2: 0}}
	return NewLikeCounts(stub, rdb, time.Minute), stub, mr
}

func TestLikeCounts_ReadThrough(t *testing.T) {
	ctx := context.Background()
	c, stub, mr := setup(t)

	got, err := c.LikeCounts(ctx, []models.ID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[models.ID]int64{1: 3, 2: 0}, got)
	require.Len(t, stub.calls, 1)

	v, err := mr.Get("murmurs:likes:1")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
	assert.Equal(t, time.Minute, mr.TTL("murmurs:likes:1"))

	got, err = c.LikeCounts(ctx, []models.ID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[models.ID]int64{1: 3, 2: 0}, got)
	assert.Len(t, stub.calls, 1, "second read served from redis")
}

func TestLikeCounts_PartialMiss(t *testing.T) {
	ctx := context.Background()
	c, stub, mr := setup(t)
	require.NoError(t, mr.Set("murmurs:likes:1", "9"))

	got, err := c.LikeCounts(ctx, []models.ID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[models.ID]int64{1: 9, 2: 0}, got)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, []models.ID{2}, stub.calls[0])
}

func TestLikeCounts_InvalidateOnWrite(t *testing.T) {
	ctx := context.Background()
	c, _, mr := setup(t)

	_, err := c.LikeCounts(ctx, []models.ID{1})
	require.NoError(t, err)
	require.True(t, mr.Exists("murmurs:likes:1"))

	require.NoError(t, c.Like(ctx, 5, 1))
	assert.False(t, mr.Exists("murmurs:likes:1"))

	got, err := c.LikeCounts(ctx, []models.ID{1})
	require.NoError(t, err)
	assert.EqualValues(t, 4, got[1])

	require.NoError(t, c.Delete(ctx, 1))
	assert.False(t, mr.Exists("murmurs:likes:1"))
}

func TestLikeCounts_WriteDuringFillIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, stub, mr := setup(t)

	// a like commits after the database read but before the cache SET
	stub.afterRead = func() {
		require.NoError(t, c.Like(ctx, 5, 1))
	}

	got, err := c.LikeCounts(ctx, []models.ID{1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, got[1], "caller still sees the count it read")
	assert.False(t, mr.Exists("murmurs:likes:1"), "stale count must not be cached")

	got, err = c.LikeCounts(ctx, []models.ID{1})
	require.NoError(t, err)
	assert.EqualValues(t, 4, got[1])

	v, err := mr.Get("murmurs:likes:1")
	require.NoError(t, err)
	assert.Equal(t, "4", v)
}

func TestLikeCounts_InvalidateBumpsVersion(t *testing.T) {
	ctx := context.Background()
	c, _, mr := setup(t)

	require.NoError(t, c.Like(ctx, 5, 1))
	require.NoError(t, c.Delete(ctx, 1))

	v, err := mr.Get("murmurs:likes:v:1")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.Equal(t, time.Minute, mr.TTL("murmurs:likes:v:1"))
}

func TestLikeCounts_FailedWriteKeepsKey(t *testing.T) {
	ctx := context.Background()
	c, _, mr := setup(t)
	require.NoError(t, mr.Set("murmurs:likes:1", "3"))

	err := c.Unlike(ctx, 5, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.True(t, mr.Exists("murmurs:likes:1"))
}

func TestLikeCounts_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	c, stub, mr := setup(t)
	mr.Close()

	got, err := c.LikeCounts(ctx, []models.ID{1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, got[1])
	assert.Len(t, stub.calls, 1)
}
