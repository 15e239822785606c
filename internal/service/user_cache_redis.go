package service

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisUserCacheStore keeps users in a single redis hash per namespace (HMGET/HGET/HSET/HDEL).
type RedisUserCacheStore struct {
	client redis.UniversalClient
}

func NewRedisUserCacheStore(client redis.UniversalClient) *RedisUserCacheStore {
	return &RedisUserCacheStore{client: client}
}

func (s *RedisUserCacheStore) BatchGet(ctx context.Context, namespace string, fields []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(fields))
	if s.client == nil || len(fields) == 0 {
		return out, nil
	}
	values, err := s.client.HMGet(ctx, namespace, fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		out[fields[i]] = []byte(str)
	}
	return out, nil
}

func (s *RedisUserCacheStore) Get(ctx context.Context, namespace, field string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	value, err := s.client.HGet(ctx, namespace, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisUserCacheStore) Set(ctx context.Context, namespace, field string, value []byte) error {
	if s.client == nil {
		return nil
	}
	return s.client.HSet(ctx, namespace, field, value).Err()
}

func (s *RedisUserCacheStore) Delete(ctx context.Context, namespace, field string) error {
	if s.client == nil {
		return nil
	}
	return s.client.HDel(ctx, namespace, field).Err()
}
