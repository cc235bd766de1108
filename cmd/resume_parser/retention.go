package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// runPruner deletes audit records older than a cutoff.
type runPruner interface {
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// pruneRuns deletes runs older than retain. Failures are logged, not returned.
func pruneRuns(ctx context.Context, store runPruner, retain time.Duration, now time.Time, logger *zap.Logger) {
	cutoff := now.Add(-retain)
	deleted, err := store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("failed to prune extraction runs", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}
	logger.Info("pruned extraction runs", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
}

// retentionLoop prunes once immediately and then every interval until ctx is done.
func retentionLoop(ctx context.Context, store runPruner, retain, interval time.Duration, logger *zap.Logger) {
	pruneRuns(ctx, store, retain, time.Now(), logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pruneRuns(ctx, store, retain, now, logger)
		}
	}
}
