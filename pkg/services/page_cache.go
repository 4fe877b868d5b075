package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// PageCache stores rendered public pages until they expire. Keys are built
// from the page inputs with IndexPageKey and ArticlePageKey.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, html string) error
	Flush(ctx context.Context) error
}

func IndexPageKey(pageIndex int, year *int) string {
	key := "index:" + strconv.Itoa(pageIndex)
	if year != nil {
		key += ":" + strconv.Itoa(*year)
	}
	return key
}

func ArticlePageKey(id uuid.UUID) string {
	return "article:" + id.String()
}

// NopPageCache never stores anything.
type NopPageCache struct{}

func (NopPageCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NopPageCache) Set(context.Context, string, string) error         { return nil }
func (NopPageCache) Flush(context.Context) error                       { return nil }

type RedisPageCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPageCache(client *redis.Client, prefix string, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisPageCache) Get(ctx context.Context, key string) (string, bool, error) {
	html, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key, html string) error {
	return c.client.Set(ctx, c.prefix+key, html, c.ttl).Err()
}

// Flush deletes every page under the cache prefix.
func (c *RedisPageCache) Flush(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
