// internal/keeper/reporter.go
package keeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reporter periodically logs a snapshot of the keeper's counters.
type Reporter struct {
	metrics  *Metrics
	interval time.Duration
	logger   *zap.Logger
}

func NewReporter(metrics *Metrics, interval time.Duration, logger *zap.Logger) *Reporter {
	return &Reporter{
		metrics:  metrics,
		interval: interval,
		logger:   logger.Named("metrics-reporter"),
	}
}

func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s := r.metrics.Snapshot()
			r.logger.Info("Keeper metrics",
				zap.Uint64("success_total", s.SuccessCount),
				zap.Uint64("failure_total", s.FailureCount),
				zap.Uint64("last_success_slot", s.LastSuccessSlot),
				zap.Int("consecutive_blockhash_errors", s.ConsecutiveBlockhashErrors))
		}
	}
}
