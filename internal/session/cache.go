package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

const defaultSnapshotTTL = 2 * time.Hour

// SnapshotCache keeps short-lived copies of session documents so an evicted
// session can be restored. A nil document from Load means "not cached";
// Delete reports whether a snapshot was there to remove.
type SnapshotCache interface {
	Save(ctx context.Context, id uuid.UUID, doc survey.Document) error
	Load(ctx context.Context, id uuid.UUID) (*survey.Document, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// RedisSnapshotCache stores snapshots as JSON with a TTL.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SnapshotCache = (*RedisSnapshotCache)(nil)

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func (c *RedisSnapshotCache) key(id uuid.UUID) string {
	return fmt.Sprintf("survey:session:%s", id.String())
}

func (c *RedisSnapshotCache) Save(ctx context.Context, id uuid.UUID, doc survey.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, c.key(id), data, c.ttl).Err()
}

func (c *RedisSnapshotCache) Load(ctx context.Context, id uuid.UUID) (*survey.Document, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var doc survey.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &doc, nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := c.client.Del(ctx, c.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("delete snapshot: %w", err)
	}
	return n > 0, nil
}
