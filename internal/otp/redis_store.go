package otp

import (
	"context"
	"errors"
	"time"

	"taskhub_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps OTP codes in redis with a TTL per key. SET with expiry
// both replaces any prior code and enforces the one-live-code invariant.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, email string, purpose models.OTPPurpose, code string, ttl time.Duration) error {
	return s.client.Set(ctx, key(email, purpose), code, ttl).Err()
}

func (s *RedisStore) Consume(ctx context.Context, email string, purpose models.OTPPurpose, code string) error {
	k := key(email, purpose)

	stored, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeMismatch
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeMismatch
	}

	// Delete makes the code single-use. If a concurrent consume got here
	// first the DEL is a no-op, which is fine: both saw the same code.
	return s.client.Del(ctx, k).Err()
}

func (s *RedisStore) Delete(ctx context.Context, email string, purpose models.OTPPurpose) error {
	return s.client.Del(ctx, key(email, purpose)).Err()
}
