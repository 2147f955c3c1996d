package service

import (
	"context"
	"log/slog"
	"time"

	"ratethem-backend/internal/repository"
)

// WorkerService periodically removes refresh tokens past their expiry
type WorkerService struct {
	tokenRepo *repository.RefreshTokenRepository
	interval  time.Duration
	now       func() time.Time
}

func NewWorkerService(tokenRepo *repository.RefreshTokenRepository, interval time.Duration) *WorkerService {
	return &WorkerService{
		tokenRepo: tokenRepo,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the purge loop until ctx is cancelled
func (w *WorkerService) Start(ctx context.Context) {
	if w.interval <= 0 {
		slog.Info("token cleanup worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("token cleanup worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.Info("token cleanup worker stopped")
			return
		case <-ticker.C:
			w.PurgeExpiredTokens(ctx)
		}
	}
}

// PurgeExpiredTokens runs one cleanup pass and returns how many rows went away
func (w *WorkerService) PurgeExpiredTokens(ctx context.Context) int64 {
	removed, err := w.tokenRepo.PurgeExpired(ctx, w.now())
	if err != nil {
		slog.ErrorContext(ctx, "purge expired refresh tokens failed", "error", err)
		return 0
	}
	if removed > 0 {
		slog.InfoContext(ctx, "purged expired refresh tokens", "count", removed)
	}
	return removed
}
