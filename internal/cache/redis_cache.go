package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// DefaultPrefix namespaces the cache keys.
const DefaultPrefix = "canvas:elements"

type RedisElementCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisElementCache(cfg config.CacheConfig, prefix string) (*RedisElementCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisElementCache(client, prefix, cfg.TTL), nil
}

func newRedisElementCache(client *redis.Client, prefix string, ttl time.Duration) *RedisElementCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisElementCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisElementCache) key(boardID string) string {
	return fmt.Sprintf("%s:board:%s", c.prefix, boardID)
}

func (c *RedisElementCache) Get(ctx context.Context, boardID string) ([]domain.Element, error) {
	data, err := c.client.Get(ctx, c.key(boardID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var els []domain.Element
	if err := json.Unmarshal(data, &els); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return els, nil
}

func (c *RedisElementCache) Set(ctx context.Context, boardID string, els []domain.Element) error {
	if els == nil {
		els = []domain.Element{}
	}
	data, err := json.Marshal(els)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(boardID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisElementCache) Invalidate(ctx context.Context, boardIDs ...string) error {
	if len(boardIDs) == 0 {
		return nil
	}
	keys := make([]string, len(boardIDs))
	for i, id := range boardIDs {
		keys[i] = c.key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisElementCache) Close() error {
	return c.client.Close()
}
