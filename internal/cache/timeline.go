package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TimelineCachePrefix is the key prefix for per-user timeline caches
	TimelineCachePrefix = "timeline:user:"

	// TimelineCacheCap is the maximum number of posts to cache per user
	TimelineCacheCap = 500

	// TimelineCacheTTL is the TTL for timeline cache (7 days)
	TimelineCacheTTL = 7 * 24 * time.Hour
)

// PostScore represents a post with its timestamp score for caching
type PostScore struct {
	PostID    int64
	Timestamp int64 // Unix timestamp
}

// TimelineCache caches the merged timeline of an account as a sorted set of
// post ids scored by creation time. Writers fan out synchronously so a post
// created immediately before a timeline read appears in that read; an
// inconsistent or unreachable cache is dropped and rebuilt from the store.
type TimelineCache interface {
	// AddPost adds a post to a user's timeline cache, but only when that
	// cache already exists. A missing cache stays missing and gets fully
	// warmed on the next read instead of accumulating partial state.
	AddPost(ctx context.Context, userID, postID int64, timestamp int64) error

	// RemovePost removes a post from a user's timeline cache.
	RemovePost(ctx context.Context, userID, postID int64) error

	// GetTimeline returns all cached post IDs for the user, newest first.
	GetTimeline(ctx context.Context, userID int64) ([]int64, error)

	// Warm bulk-inserts posts into a user's timeline cache.
	Warm(ctx context.Context, userID int64, posts []PostScore) error

	// Invalidate drops a user's timeline cache entirely. Used when the
	// follow graph changes and the cached merge is no longer the right set.
	Invalidate(ctx context.Context, userID int64) error

	// Exists checks if a user has a timeline cache entry.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisTimelineCache implements TimelineCache using Redis Sorted Sets.
type RedisTimelineCache struct {
	client *redis.Client
}

// NewTimelineCache creates a TimelineCache backed by Redis.
func NewTimelineCache(client *redis.Client) TimelineCache {
	return &RedisTimelineCache{client: client}
}

func timelineKey(userID int64) string {
	return fmt.Sprintf("%s%d", TimelineCachePrefix, userID)
}

// AddPost adds a post to an existing timeline cache using a pipeline:
// ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE (refresh TTL).
func (c *RedisTimelineCache) AddPost(ctx context.Context, userID, postID int64, timestamp int64) error {
	key := timelineKey(userID)

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check timeline exists: %w", err)
	}
	if exists == 0 {
		// No cache to maintain; the next read warms it from the store.
		return nil
	}

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(postID, 10),
	})

	// ZREMRANGEBYRANK removes [start, stop] inclusive, rank 0 is the lowest
	// score (oldest). Keep the newest TimelineCacheCap entries.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-TimelineCacheCap-1))

	pipe.Expire(ctx, key, TimelineCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[TimelineCache] AddPost FAILED: user=%d post=%d err=%v", userID, postID, err)
		return fmt.Errorf("add post to timeline: %w", err)
	}

	return nil
}

// RemovePost removes a post from a user's timeline cache.
func (c *RedisTimelineCache) RemovePost(ctx context.Context, userID, postID int64) error {
	key := timelineKey(userID)
	member := strconv.FormatInt(postID, 10)

	if err := c.client.ZRem(ctx, key, member).Err(); err != nil {
		log.Printf("[TimelineCache] RemovePost FAILED: user=%d post=%d err=%v", userID, postID, err)
		return fmt.Errorf("remove post from timeline: %w", err)
	}

	return nil
}

// GetTimeline returns all cached post IDs for the user, newest first.
func (c *RedisTimelineCache) GetTimeline(ctx context.Context, userID int64) ([]int64, error) {
	key := timelineKey(userID)

	members, err := c.client.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		log.Printf("[TimelineCache] GetTimeline FAILED: user=%d err=%v", userID, err)
		return nil, fmt.Errorf("get timeline: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, TimelineCacheTTL)

	postIDs := make([]int64, len(members))
	for i, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse post id: %w", err)
		}
		postIDs[i] = id
	}

	return postIDs, nil
}

// Warm bulk-inserts posts into a user's timeline cache using a pipeline.
func (c *RedisTimelineCache) Warm(ctx context.Context, userID int64, posts []PostScore) error {
	if len(posts) == 0 {
		return nil
	}

	key := timelineKey(userID)
	startTime := time.Now()

	pipe := c.client.Pipeline()

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: strconv.FormatInt(p.PostID, 10),
		}
	}
	pipe.ZAdd(ctx, key, members...)

	pipe.ZRemRangeByRank(ctx, key, 0, int64(-TimelineCacheCap-1))

	pipe.Expire(ctx, key, TimelineCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[TimelineCache] Warm FAILED: user=%d posts=%d err=%v", userID, len(posts), err)
		return fmt.Errorf("warm timeline: %w", err)
	}

	log.Printf("[TimelineCache] Warm OK: user=%d posts=%d duration=%v",
		userID, len(posts), time.Since(startTime))
	return nil
}

// Invalidate drops a user's timeline cache entirely.
func (c *RedisTimelineCache) Invalidate(ctx context.Context, userID int64) error {
	key := timelineKey(userID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[TimelineCache] Invalidate FAILED: user=%d err=%v", userID, err)
		return fmt.Errorf("invalidate timeline: %w", err)
	}

	return nil
}

// Exists checks if a user has a timeline cache entry.
func (c *RedisTimelineCache) Exists(ctx context.Context, userID int64) (bool, error) {
	key := timelineKey(userID)

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check timeline exists: %w", err)
	}

	return exists > 0, nil
}
