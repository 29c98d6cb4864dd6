package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=redis_store.go -destination=mock_redis_store.go -package=session

// RedisClient is the part of *redis.Client the token store needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient connects to the Redis instance at addr
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// RedisTokenStore keeps the token in Redis so several processes share one session.
// A JWT is stored with a TTL matching its exp claim.
type RedisTokenStore struct {
	client RedisClient
	now    func() time.Time
}

// NewRedisTokenStore creates a store on top of client
func NewRedisTokenStore(client RedisClient) *RedisTokenStore {
	return &RedisTokenStore{client: client, now: time.Now}
}

func (s *RedisTokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, TokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis token store: get: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) SetToken(ctx context.Context, token string) error {
	var ttl time.Duration
	if exp, ok := TokenExpiry(token); ok {
		ttl = exp.Sub(s.now())
		if ttl <= 0 {
			return s.ClearToken(ctx)
		}
	}

	if err := s.client.Set(ctx, TokenKey, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis token store: set: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) ClearToken(ctx context.Context) error {
	if err := s.client.Del(ctx, TokenKey).Err(); err != nil {
		return fmt.Errorf("redis token store: del: %w", err)
	}
	return nil
}
