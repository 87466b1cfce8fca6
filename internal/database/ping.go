package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialRetryDelay は接続リトライの初回待機時間。
	initialRetryDelay = 500 * time.Millisecond
	// maxRetryDelay は接続リトライの最大待機時間。
	maxRetryDelay = 8 * time.Second
)

// Pinger はDBの疎通確認インターフェース。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RetryDelay は失敗回数に基づいて指数バックオフの待機時間を計算する。
// 初回500ms、2倍ずつ増加、最大8秒。
func RetryDelay(failures int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// PingWithRetry はDBに接続できるまで最大attempts回Pingを試行する。
// コンテナ起動直後などDBの準備が整っていない場合に備え、失敗ごとに指数バックオフで待機する。
func PingWithRetry(ctx context.Context, db Pinger, attempts int) error {
	return pingWithRetry(ctx, db, attempts, RetryDelay)
}

func pingWithRetry(ctx context.Context, db Pinger, attempts int, delay func(int) time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		wait := delay(i)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_in", wait),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("database ping canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("database ping failed after %d attempts: %w", attempts, err)
}
