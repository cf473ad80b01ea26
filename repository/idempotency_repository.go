package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codmenta/Merify/models"
	"github.com/redis/go-redis/v9"
)

// IdempotencyRepository remembers the session created for an Idempotency-Key
// so a replayed checkout returns it instead of opening a second session.
type IdempotencyRepository interface {
	// TryLock claims key for scope. It reports false when another request
	// holds the claim.
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key string, session *models.PaymentSession) error
	Recall(ctx context.Context, scope, key string) (*models.PaymentSession, bool, error)
}

type redisIdempotencyRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyRepo(rdb *redis.Client, ttl time.Duration) IdempotencyRepository {
	return &redisIdempotencyRepo{rdb: rdb, ttl: ttl}
}

func lockKey(scope, key string) string    { return "idem:checkout:lock:" + scope + ":" + key }
func sessionKey(scope, key string) string { return "idem:checkout:" + scope + ":" + key }

func (r *redisIdempotencyRepo) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return r.rdb.SetNX(ctx, lockKey(scope, key), "1", r.ttl).Result()
}

func (r *redisIdempotencyRepo) Unlock(ctx context.Context, scope, key string) error {
	return r.rdb.Del(ctx, lockKey(scope, key)).Err()
}

func (r *redisIdempotencyRepo) Remember(ctx context.Context, scope, key string, session *models.PaymentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.rdb.Set(ctx, sessionKey(scope, key), data, r.ttl).Err()
}

func (r *redisIdempotencyRepo) Recall(ctx context.Context, scope, key string) (*models.PaymentSession, bool, error) {
	data, err := r.rdb.Get(ctx, sessionKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var session models.PaymentSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("decode session: %w", err)
	}
	return &session, true, nil
}
