package allowlist

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
)

// RedisSource reads the allow-list from a Redis set.
type RedisSource struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSource creates a source reading SMEMBERS key.
func NewRedisSource(client redis.UniversalClient, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

// Load returns the set members sorted, since Redis sets are unordered.
func (s *RedisSource) Load(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", s.key, err)
	}
	sort.Strings(names)
	return names, nil
}

// Seed adds names to the set. Existing members are kept.
func (s *RedisSource) Seed(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	members := make([]interface{}, len(names))
	for i, n := range names {
		members[i] = n
	}
	if err := s.client.SAdd(ctx, s.key, members...).Err(); err != nil {
		return fmt.Errorf("failed to seed %s in redis: %w", s.key, err)
	}
	return nil
}

// NewRedisClient creates a universal client from a redis:// URL.
func NewRedisClient(redisURL string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cant parse redis url: %w", err)
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{opts.Addr},
		DB:           opts.DB,
		Username:     opts.Username,
		Password:     opts.Password,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
		MaxRetries:   opts.MaxRetries,
	}), nil
}

// Remove deletes names from the set.
func (s *RedisSource) Remove(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	members := make([]interface{}, len(names))
	for i, n := range names {
		members[i] = n
	}
	if err := s.client.SRem(ctx, s.key, members...).Err(); err != nil {
		return fmt.Errorf("failed to remove from %s in redis: %w", s.key, err)
	}
	return nil
}
