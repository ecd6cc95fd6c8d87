package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/blog-service/internal/domain"
)

const (
	publishedListKey = "posts:published"
	postKeyPrefix    = "posts:id:"
)

// CacheClient is the subset of go-redis commands the post cache relies on.
// *redis.Client satisfies it.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// PostCache is a read-through cache for the public post surface. A nil
// client disables caching; every method then reports a miss or no-ops.
type PostCache struct {
	client CacheClient
	ttl    time.Duration
}

// NewPostCache wraps a cache client.
func NewPostCache(client CacheClient, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PostCache{client: client, ttl: ttl}
}

// GetPublished returns the cached published-post list, or ok=false on a miss.
func (c *PostCache) GetPublished(ctx context.Context) ([]domain.Post, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, publishedListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

// SetPublished stores the published-post list.
func (c *PostCache) SetPublished(ctx context.Context, posts []domain.Post) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}
	c.client.Set(ctx, publishedListKey, raw, c.ttl)
}

// GetPost returns a cached single published post, or ok=false on a miss.
func (c *PostCache) GetPost(ctx context.Context, id int64) (*domain.Post, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, postKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var post domain.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, false
	}
	return &post, true
}

// SetPost stores a single published post.
func (c *PostCache) SetPost(ctx context.Context, post *domain.Post) {
	if c == nil || c.client == nil || post == nil {
		return
	}
	raw, err := json.Marshal(post)
	if err != nil {
		return
	}
	c.client.Set(ctx, postKey(post.ID), raw, c.ttl)
}

// Invalidate drops the cached list and, when id > 0, the single-post entry.
// Called on every post mutation to keep the public surface coherent.
func (c *PostCache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	keys := []string{publishedListKey}
	if id > 0 {
		keys = append(keys, postKey(id))
	}
	c.client.Del(ctx, keys...)
}

func postKey(id int64) string {
	return fmt.Sprintf("%s%d", postKeyPrefix, id)
}
