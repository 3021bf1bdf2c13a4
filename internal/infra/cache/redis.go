package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client     redis.UniversalClient
	defaultTTL time.Duration
}

// NewRedisClient aceita um endereço ou uma lista separada por vírgula (cluster).
func NewRedisClient(addrs, password string, defaultTTL time.Duration) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    strings.Split(addrs, ","),
		Password: password,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisClient{client: client, defaultTTL: defaultTTL}
}

func (rc *RedisClient) SetKey(ctx context.Context, key string, value string) error {
	fields := map[string]interface{}{
		"data":      value,
		"cached_at": time.Now().Unix(),
	}

	if err := rc.client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return rc.client.Expire(ctx, key, rc.defaultTTL).Err()
}

// GetKey devolve found=false em cache miss.
func (rc *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	result := rc.client.HGet(ctx, key, "data")

	if result.Err() == redis.Nil {
		return "", false, nil
	}
	if result.Err() != nil {
		return "", false, result.Err()
	}
	return result.Val(), true, nil
}

func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
