package workers

import (
	"context"
	"testing"
	"time"

	"taskhub_backend/internal/models"
	"taskhub_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneOnceRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryRefreshTokenRepository()

	require.NoError(t, repo.Create(ctx, &models.RefreshToken{
		UserID: "u1", Token: "dead", ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, repo.Create(ctx, &models.RefreshToken{
		UserID: "u1", Token: "live", ExpiresAt: time.Now().Add(time.Hour),
	}))

	NewTokenWorker(repo, time.Hour).pruneOnce(ctx)

	count, err := repo.CountByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ok, err := repo.Exists(ctx, "u1", "live")
	require.NoError(t, err)
	assert.True(t, ok)
}
