package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRecordStore keeps records as plain string keys under a prefix
type RedisRecordStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRecordStore(client *redis.Client, prefix string) *RedisRecordStore {
	return &RedisRecordStore{client: client, prefix: prefix}
}

func (s *RedisRecordStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisRecordStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get record: %w", err)
	}
	return val, true, nil
}

// Set stores the record without expiry
func (s *RedisRecordStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set record: %w", err)
	}
	return nil
}

// SetMany writes all records in one MULTI/EXEC block
func (s *RedisRecordStore) SetMany(ctx context.Context, records map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range sortedKeys(records) {
			pipe.Set(ctx, s.key(k), records[k], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set records: %w", err)
	}
	return nil
}
