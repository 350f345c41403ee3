package otp

import (
	"context"
	"strconv"
	"testing"
	"time"

	"taskhub_backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_Range(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestMemoryStore_SaveReplacesPriorCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeSignup, "1111", time.Minute))
	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeSignup, "2222", time.Minute))

	// The first code is dead, only the second is live.
	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "1111"), ErrCodeMismatch)
	assert.NoError(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "2222"))
}

func TestMemoryStore_ConsumeIsSingleUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeReset, "4321", time.Minute))
	require.NoError(t, store.Consume(ctx, "a@x.com", models.OTPPurposeReset, "4321"))

	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeReset, "4321"), ErrCodeMismatch)
}

func TestMemoryStore_PurposesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeSignup, "1234", time.Minute))

	// A signup code must not satisfy a reset consumption.
	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeReset, "1234"), ErrCodeMismatch)
	assert.NoError(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "1234"))
}

func TestMemoryStore_ExpiredCodeRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeSignup, "1234", time.Minute))

	// Past the expiry window the exact code must still be rejected.
	store.SetClock(func() time.Time { return now.Add(2 * time.Minute) })
	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "1234"), ErrCodeMismatch)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_SaveConsumeDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newRedisStore(t)

	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeSignup, "1111", time.Minute))
	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeSignup, "2222", time.Minute))

	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "1111"), ErrCodeMismatch)
	assert.NoError(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "2222"))
	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeSignup, "2222"), ErrCodeMismatch)

	require.NoError(t, store.Save(ctx, "b@x.com", models.OTPPurposeReset, "3333", time.Minute))
	require.NoError(t, store.Delete(ctx, "b@x.com", models.OTPPurposeReset))
	assert.ErrorIs(t, store.Consume(ctx, "b@x.com", models.OTPPurposeReset, "3333"), ErrCodeMismatch)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Save(ctx, "a@x.com", models.OTPPurposeReset, "9999", time.Minute))

	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, store.Consume(ctx, "a@x.com", models.OTPPurposeReset, "9999"), ErrCodeMismatch)
}
