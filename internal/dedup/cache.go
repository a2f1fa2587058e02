package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"certdedup/internal/platform/redis"
	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"
)

// ResultCache is a read-through cache in front of the result store. It is an
// optimization only: a miss or infrastructure error falls through to the
// store, never to a verdict.
type ResultCache interface {
	Get(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, contentHash string) (Result, error)
	Set(ctx context.Context, result Result) error
}

// RedisResultCache caches persisted results in Redis with a bounded TTL.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

func cacheKey(subjectID id.SubjectID, courseID id.CourseID, contentHash string) string {
	return fmt.Sprintf("dedup:result:%s:%s:%s", subjectID, courseID, contentHash)
}

func (c *RedisResultCache) Get(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, contentHash string) (Result, error) {
	raw, err := c.client.Get(ctx, cacheKey(subjectID, courseID, contentHash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Result{}, sentinel.ErrNotFound
		}
		return Result{}, fmt.Errorf("cache get: %w", err)
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt entry behaves like a miss; the store is the authority.
		return Result{}, sentinel.ErrNotFound
	}
	return result, nil
}

func (c *RedisResultCache) Set(ctx context.Context, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	key := cacheKey(result.SubjectID, result.CourseID, result.ContentHash)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
