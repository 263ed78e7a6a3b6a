package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes expired rows from one table
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
	Name() string
}

// ExpirySweeper periodically removes expired codes and tokens until ctx
// is cancelled. Reads check expiry on their own, this only keeps the
// tables small.
func ExpirySweeper(ctx context.Context, t time.Duration, sweepers ...Sweeper) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Expiry sweeper attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				zap.L().Debug("Expiry sweeper stopped")
				return
			case <-ticker.C:
				SweepOnce(ctx, sweepers...)
			}
		}
	}()
}

// SweepOnce runs every sweeper once. Failures are logged and don't stop
// the remaining sweepers.
func SweepOnce(ctx context.Context, sweepers ...Sweeper) {
	for _, s := range sweepers {
		n, err := s.Sweep(ctx)
		if err != nil {
			zap.L().Error("Failed to sweep expired rows", zap.String("table", s.Name()), zap.Error(err))
			continue
		}

		if n > 0 {
			zap.L().Debug("Swept expired rows", zap.String("table", s.Name()), zap.Int64("count", n))
		}
	}
}
