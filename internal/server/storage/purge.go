package storage

import (
	"context"
	"log/slog"
	"time"
)

// RunPurge периодически удаляет истекшие записи об отзыве до отмены ctx.
// Блокирует вызывающего.
func RunPurge(ctx context.Context, store RevocationStorage, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.DeleteExpired(ctx, now)
			if err != nil {
				logger.Error("failed to purge revoked tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.Debug("purged revoked tokens", slog.Int("count", n))
			}
		}
	}
}
