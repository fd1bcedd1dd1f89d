// internal/keeper/executor.go
package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/percolator-keeper/internal/blockchain"
)

const (
	DefaultMaxAttempts      = 5
	DefaultBackoffBase      = 1 * time.Second
	DefaultExpiryPauseAfter = 3
	DefaultExpiryPause      = 30 * time.Second
)

// errFeeVeto marks a clean economic abort: the invocation ends without a
// failure count or a retry.
var errFeeVeto = errors.New("fee estimate above ceiling")

// ExecutorConfig bounds one crank invocation.
type ExecutorConfig struct {
	ProgramID solana.PublicKey
	Slab      solana.PublicKey
	Oracle    solana.PublicKey

	// MaxAttempts is the total attempt budget per invocation.
	MaxAttempts uint
	// BackoffBase is the first retry delay; it doubles on each attempt.
	BackoffBase time.Duration
	// ExpiryPauseAfter is how many consecutive blockhash-expiry failures
	// signal sustained congestion rather than one-off staleness.
	ExpiryPauseAfter int
	// ExpiryPause is the single fixed pause applied on that signal.
	ExpiryPause time.Duration
}

// Executor builds, fee-checks, simulates and submits the crank
// transaction, retrying with exponential backoff. One invocation runs to
// a terminal outcome: success, fee veto, predicted revert or exhaustion.
type Executor struct {
	cfg     ExecutorConfig
	guard   *FeeGuard
	signer  Signer
	acquire AcquireFunc
	metrics *Metrics
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration)
}

func NewExecutor(cfg ExecutorConfig, guard *FeeGuard, signer Signer, acquire AcquireFunc, metrics *Metrics, logger *zap.Logger) *Executor {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.ExpiryPauseAfter == 0 {
		cfg.ExpiryPauseAfter = DefaultExpiryPauseAfter
	}
	if cfg.ExpiryPause == 0 {
		cfg.ExpiryPause = DefaultExpiryPause
	}
	return &Executor{
		cfg:     cfg,
		guard:   guard,
		signer:  signer,
		acquire: acquire,
		metrics: metrics,
		logger:  logger.Named("crank-executor"),
		sleep:   sleepCtx,
	}
}

// Execute runs one full crank invocation. Every crank-level outcome is
// absorbed into metrics and logs so the scheduler loop keeps running; the
// only error that escapes is the context's own.
func (e *Executor) Execute(ctx context.Context, conn Ledger) error {
	var expiryStreak int

	op := func() (solana.Signature, error) {
		sig, err := e.attempt(ctx, conn)
		if err == nil {
			return sig, nil
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			// Terminal for the invocation; attempt() has already
			// accounted for it.
			return solana.Signature{}, err
		}

		e.metrics.RecordFailure()
		if blockchain.IsBlockhashExpired(err) {
			expiryStreak++
			e.metrics.SetBlockhashErrors(expiryStreak)
			e.logger.Warn("Blockhash no longer accepted",
				zap.Int("consecutive", expiryStreak),
				zap.Error(err))
			if expiryStreak >= e.cfg.ExpiryPauseAfter {
				e.logger.Warn("Sustained congestion detected, pausing",
					zap.Duration("pause", e.cfg.ExpiryPause))
				e.sleep(ctx, e.cfg.ExpiryPause)
				expiryStreak = 0
				e.metrics.SetBlockhashErrors(0)
			}
		} else {
			// An unrelated failure must not count toward the
			// congestion threshold.
			expiryStreak = 0
			e.metrics.SetBlockhashErrors(0)
			e.logger.Warn("Crank attempt failed", zap.Error(err))
		}

		// The failure may be connection-level: replace the session
		// wholesale before the next attempt.
		if fresh, acqErr := e.acquire(ctx); acqErr != nil {
			e.logger.Warn("Could not re-acquire RPC connection, keeping current", zap.Error(acqErr))
		} else {
			conn = fresh
		}

		return solana.Signature{}, err
	}

	sig, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(newBackOff(e.cfg.BackoffBase)),
		backoff.WithMaxTries(e.cfg.MaxAttempts),
	)

	switch {
	case err == nil:
		e.logger.Info("Crank submitted", zap.String("signature", sig.String()))
	case errors.Is(err, errFeeVeto):
		e.logger.Info("Crank skipped: fee above ceiling")
	case errors.Is(err, blockchain.ErrSimulationReverted):
		e.logger.Error("Crank aborted: simulation predicts revert", zap.Error(err))
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		e.logger.Error("Crank failed: attempt budget exhausted",
			zap.Uint("attempts", e.cfg.MaxAttempts),
			zap.Error(err))
	}
	return nil
}

// attempt performs one BUILD → FEE_CHECK → SIMULATE → SUBMIT pass. The
// blockhash is fetched fresh here on every call: it expires quickly and
// must never be reused across attempts.
func (e *Executor) attempt(ctx context.Context, conn Ledger) (solana.Signature, error) {
	blockhash, lastValidHeight, err := conn.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	ix := CrankInstruction(e.cfg.ProgramID, e.cfg.Slab, e.cfg.Oracle, e.signer.PublicKey())
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(e.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	fee, vetoed, err := e.guard.Check(ctx, conn, &tx.Message)
	if err != nil {
		return solana.Signature{}, err
	}
	if vetoed {
		return solana.Signature{}, backoff.Permanent(errFeeVeto)
	}

	if err := e.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := conn.Simulate(ctx, tx); err != nil {
		if errors.Is(err, blockchain.ErrSimulationReverted) {
			// Guaranteed to revert: never pay the fee for it.
			e.metrics.RecordFailure()
			return solana.Signature{}, backoff.Permanent(err)
		}
		return solana.Signature{}, fmt.Errorf("simulation call failed: %w", err)
	}

	sig, err := conn.Send(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	e.logger.Debug("Crank sent",
		zap.String("signature", sig.String()),
		zap.Uint64("fee_lamports", fee),
		zap.Uint64("last_valid_height", lastValidHeight))

	slot, slotErr := conn.Slot(ctx)
	if slotErr != nil {
		e.logger.Warn("Could not read slot after submission", zap.Error(slotErr))
	}
	e.metrics.RecordSuccess(slot)

	return sig, nil
}

// newBackOff yields deterministic doubling delays: base, 2x, 4x and so on.
func newBackOff(base time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 64 * base
	return b
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
