// internal/keeper/scheduler.go
package keeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FreshnessChecker answers whether the slab needs a crank.
type FreshnessChecker interface {
	Check(ctx context.Context, ledger Ledger) (Verdict, error)
}

// Cranker runs one full crank invocation to a terminal outcome.
type Cranker interface {
	Execute(ctx context.Context, conn Ledger) error
}

// Loop is the keeper's top-level poll/crank cycle. It is single-threaded
// and cooperative: a crank invocation always runs to completion before
// the next poll, so no two submissions ever race for the same refresh.
type Loop struct {
	oracle   FreshnessChecker
	executor Cranker
	acquire  AcquireFunc
	interval time.Duration
	logger   *zap.Logger
}

func NewLoop(oracle FreshnessChecker, executor Cranker, acquire AcquireFunc, interval time.Duration, logger *zap.Logger) *Loop {
	return &Loop{
		oracle:   oracle,
		executor: executor,
		acquire:  acquire,
		interval: interval,
		logger:   logger.Named("scheduler"),
	}
}

// Run polls until ctx is cancelled. Failing to reach any endpoint at
// startup is the one unrecoverable condition; after that, every iteration
// failure is absorbed, the connection is replaced and polling continues.
func (l *Loop) Run(ctx context.Context) error {
	conn, err := l.acquire(ctx)
	if err != nil {
		return fmt.Errorf("no usable RPC endpoint at startup: %w", err)
	}
	l.logger.Info("Scheduler loop started", zap.Duration("poll_interval", l.interval))

	for {
		verdict, err := l.oracle.Check(ctx, conn)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("Freshness poll failed, re-acquiring connection", zap.Error(err))
			if fresh, acqErr := l.acquire(ctx); acqErr != nil {
				l.logger.Error("All RPC endpoints unreachable, will retry next cycle", zap.Error(acqErr))
			} else {
				conn = fresh
			}
		case verdict.Stale:
			l.logger.Info("Slab is stale, cranking",
				zap.Uint64("observed_slot", verdict.ObservedSlot),
				zap.Uint64("reference_slot", verdict.ReferenceSlot))
			if err := l.executor.Execute(ctx, conn); err != nil {
				// Only context cancellation escapes Execute.
				return err
			}
		default:
			l.logger.Debug("Slab is fresh",
				zap.Uint64("observed_slot", verdict.ObservedSlot),
				zap.Uint64("reference_slot", verdict.ReferenceSlot))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.interval):
		}
	}
}
