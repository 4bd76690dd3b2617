package cache

import "context"

// NoopTimelineCache satisfies TimelineCache without caching anything. Used
// when Redis is not configured; every timeline read goes to the store.
type NoopTimelineCache struct{}

func NewNoopTimelineCache() TimelineCache {
	return NoopTimelineCache{}
}

func (NoopTimelineCache) AddPost(ctx context.Context, userID, postID int64, timestamp int64) error {
	return nil
}

func (NoopTimelineCache) RemovePost(ctx context.Context, userID, postID int64) error {
	return nil
}

func (NoopTimelineCache) GetTimeline(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}

func (NoopTimelineCache) Warm(ctx context.Context, userID int64, posts []PostScore) error {
	return nil
}

func (NoopTimelineCache) Invalidate(ctx context.Context, userID int64) error {
	return nil
}

func (NoopTimelineCache) Exists(ctx context.Context, userID int64) (bool, error) {
	return false, nil
}
