package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// DefaultTTL is how long a cached score stays valid.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "scoring:application:"

// redisClient is the subset of redis.Cmdable the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisScoreCache implements port.ScoreCache on Redis. Snapshots are stored
// as JSON under one key per application.
type RedisScoreCache struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisClient connects to the Redis server at addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisScoreCache creates a score cache. A non-positive ttl uses DefaultTTL.
func NewRedisScoreCache(client redisClient, ttl time.Duration) *RedisScoreCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisScoreCache{client: client, ttl: ttl}
}

func key(applicationID uuid.UUID) string {
	return keyPrefix + applicationID.String()
}

// Get returns the cached snapshot, or model.ErrNotFound on a miss.
func (c *RedisScoreCache) Get(ctx context.Context, applicationID uuid.UUID) (model.ScoreSnapshot, error) {
	raw, err := c.client.Get(ctx, key(applicationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.ScoreSnapshot{}, fmt.Errorf("cached score for %s: %w", applicationID, model.ErrNotFound)
	}
	if err != nil {
		return model.ScoreSnapshot{}, fmt.Errorf("read cached score: %w", err)
	}

	var snapshot model.ScoreSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return model.ScoreSnapshot{}, fmt.Errorf("decode cached score: %w", err)
	}
	return snapshot, nil
}

// Set stores the snapshot under its application ID.
func (c *RedisScoreCache) Set(ctx context.Context, snapshot model.ScoreSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode score snapshot: %w", err)
	}
	if err := c.client.Set(ctx, key(snapshot.ApplicationID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached score: %w", err)
	}
	return nil
}

// Invalidate removes the cached score of an application.
func (c *RedisScoreCache) Invalidate(ctx context.Context, applicationID uuid.UUID) error {
	if err := c.client.Del(ctx, key(applicationID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached score: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (c *RedisScoreCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
