// Package cache keeps public user records in Redis so session checks do not
// hit Postgres on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 24 * time.Hour

var ErrCacheMiss = errors.New("cache miss")

type UserCache interface {
	Get(ctx context.Context, userId int) (types.User, error)
	Set(ctx context.Context, user types.User) error
	Invalidate(ctx context.Context, userIds ...int) error
}

type RedisUserCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisUserCache(client redis.UniversalClient, ttl time.Duration) *RedisUserCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisUserCache{client: client, ttl: ttl}
}

func userKey(userId int) string {
	return "user:" + strconv.Itoa(userId)
}

func (c *RedisUserCache) Get(ctx context.Context, userId int) (types.User, error) {
	var user types.User

	raw, err := c.client.Get(ctx, userKey(userId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return user, ErrCacheMiss
		}
		return user, fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal(raw, &user); err != nil {
		return user, fmt.Errorf("decode cached user: %w", err)
	}

	return user, nil
}

func (c *RedisUserCache) Set(ctx context.Context, user types.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := c.client.Set(ctx, userKey(user.Id), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisUserCache) Invalidate(ctx context.Context, userIds ...int) error {
	if len(userIds) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIds))
	for _, id := range userIds {
		keys = append(keys, userKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// NopUserCache always misses.
type NopUserCache struct{}

func (NopUserCache) Get(context.Context, int) (types.User, error) {
	return types.User{}, ErrCacheMiss
}

func (NopUserCache) Set(context.Context, types.User) error {
	return nil
}

func (NopUserCache) Invalidate(context.Context, ...int) error {
	return nil
}
