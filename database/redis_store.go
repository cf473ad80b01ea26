package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps each document as a JSON string under doc:<name>, without expiry.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) key(name string) string {
	return "doc:" + name
}

func (s *RedisStore) Load(ctx context.Context, name string, out any, def any) error {
	if err := validateName(name); err != nil {
		return err
	}
	raw, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		created, cerr := s.createDefault(ctx, name, def)
		if cerr != nil {
			return cerr
		}
		if created {
			return assign(out, def)
		}
		raw, err = s.client.Get(ctx, s.key(name)).Bytes()
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", name, err)
	}

	fellBack, err := decodeOrDefault(raw, out, def)
	if fellBack {
		s.logger.Warn("document is not valid JSON, using default", zap.String("document", name))
	}
	return err
}

// createDefault stores def only when the key is still absent. It reports
// false when another writer got there first.
func (s *RedisStore) createDefault(ctx context.Context, name string, def any) (bool, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return false, fmt.Errorf("encode document %s: %w", name, err)
	}
	created, err := s.client.SetNX(ctx, s.key(name), data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", name, err)
	}
	return created, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}
