package session

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"strings"
	"time"
)

// RedisStore keeps tokens in Redis under prefixed keys; Redis TTLs handle expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) generateKey(keys ...string) string {
	return strings.Join(append([]string{s.prefix}, keys...), ":")
}

func (s *RedisStore) Load(ctx context.Context, key string) (string, error) {
	token, err := s.client.Get(ctx, s.generateKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return token, err
}

func (s *RedisStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.generateKey(key), token, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.generateKey(key)).Err()
}

func (s *RedisStore) Purge(ctx context.Context) (int64, error) {
	return 0, nil
}
