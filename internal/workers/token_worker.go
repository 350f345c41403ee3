package workers

import (
	"context"
	"time"

	"taskhub_backend/internal/logger"
	"taskhub_backend/internal/repositories"
)

// TokenWorker prunes refresh tokens past their expiry so the sessions
// table does not grow without bound.
type TokenWorker struct {
	tokenRepo repositories.RefreshTokenRepository
	interval  time.Duration
}

func NewTokenWorker(tokenRepo repositories.RefreshTokenRepository, interval time.Duration) *TokenWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenWorker{tokenRepo: tokenRepo, interval: interval}
}

// Start launches the prune loop. It stops when ctx is cancelled.
func (w *TokenWorker) Start(ctx context.Context) {
	go w.pruneLoop(ctx)
}

func (w *TokenWorker) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("token worker stopped")
			return
		case <-ticker.C:
			w.pruneOnce(ctx)
		}
	}
}

func (w *TokenWorker) pruneOnce(ctx context.Context) {
	pruned, err := w.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		logger.Error("failed to prune expired refresh tokens", "error", err.Error())
		return
	}
	if pruned > 0 {
		logger.Info("pruned expired refresh tokens", "count", pruned)
	}
}
