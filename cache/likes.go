// Package cache keeps murmur like counts in Redis in front of the database.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"murmur/metrics"
	"murmur/models"
	"murmur/repositories"
)

const (
	likeKeyPrefix    = "murmurs:likes:"
	versionKeyPrefix = "murmurs:likes:v:"
)

// LikeCounts wraps a MurmurRepository and serves LikeCounts from Redis.
// Every committed like, unlike or delete drops the affected key and bumps
// its version, and any Redis failure falls back to the database.
type LikeCounts struct {
	repositories.MurmurRepository
	rdb *redis.Client
	ttl time.Duration
}

func NewLikeCounts(inner repositories.MurmurRepository, rdb *redis.Client, ttl time.Duration) *LikeCounts {
	return &LikeCounts{MurmurRepository: inner, rdb: rdb, ttl: ttl}
}

func likeKey(id models.ID) string {
	return likeKeyPrefix + id.String()
}

// versionKey is bumped on every committed write to the murmur's likes.
func versionKey(id models.ID) string {
	return versionKeyPrefix + id.String()
}

func (c *LikeCounts) LikeCounts(ctx context.Context, ids []models.ID) (map[models.ID]int64, error) {
	if len(ids) == 0 {
		return map[models.ID]int64{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = likeKey(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		metrics.LikeCache.WithLabelValues("error").Inc()
		slog.Warn("like cache read failed", "error", err)
		return c.MurmurRepository.LikeCounts(ctx, ids)
	}

	counts := make(map[models.ID]int64, len(ids))
	var misses []models.ID
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			misses = append(misses, ids[i])
			continue
		}
		counts[ids[i]] = n
	}
	metrics.LikeCache.WithLabelValues("hit").Add(float64(len(ids) - len(misses)))
	if len(misses) == 0 {
		return counts, nil
	}
	metrics.LikeCache.WithLabelValues("miss").Add(float64(len(misses)))

	fresh, err := c.fill(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, id := range misses {
		counts[id] = fresh[id]
	}
	return counts, nil
}

// fill loads counts from the database and caches them, under a WATCH on each
// murmur's version key. A like, unlike or delete committing between the
// database read and the SET bumps the version and the SET is discarded.
func (c *LikeCounts) fill(ctx context.Context, ids []models.ID) (map[models.ID]int64, error) {
	versions := make([]string, len(ids))
	for i, id := range ids {
		versions[i] = versionKey(id)
	}

	var (
		fresh map[models.ID]int64
		dbErr error
	)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		fresh, dbErr = c.MurmurRepository.LikeCounts(ctx, ids)
		if dbErr != nil {
			return dbErr
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range ids {
				pipe.Set(ctx, likeKey(id), fresh[id], c.ttl)
			}
			return nil
		})
		return err
	}, versions...)

	switch {
	case dbErr != nil:
		return nil, dbErr
	case fresh == nil:
		// WATCH itself failed before the database was read
		slog.Warn("like cache watch failed", "error", err)
		return c.MurmurRepository.LikeCounts(ctx, ids)
	case errors.Is(err, redis.TxFailedErr):
		metrics.LikeCache.WithLabelValues("discarded").Add(float64(len(ids)))
	case err != nil:
		slog.Warn("like cache write failed", "error", err)
	}
	return fresh, nil
}

func (c *LikeCounts) Like(ctx context.Context, userID, murmurID models.ID) error {
	if err := c.MurmurRepository.Like(ctx, userID, murmurID); err != nil {
		return err
	}
	c.invalidate(ctx, murmurID)
	return nil
}

func (c *LikeCounts) Unlike(ctx context.Context, userID, murmurID models.ID) error {
	if err := c.MurmurRepository.Unlike(ctx, userID, murmurID); err != nil {
		return err
	}
	c.invalidate(ctx, murmurID)
	return nil
}

func (c *LikeCounts) Delete(ctx context.Context, id models.ID) error {
	if err := c.MurmurRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *LikeCounts) invalidate(ctx context.Context, id models.ID) {
	// the write already committed; don't let request cancellation skip the DEL
	ctx = context.WithoutCancel(ctx)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), c.ttl)
		pipe.Del(ctx, likeKey(id))
		return nil
	})
	if err != nil {
		slog.Warn("like cache invalidate failed", "murmur_id", id, "error", err)
	}
}
