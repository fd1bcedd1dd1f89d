// internal/keeper/feeguard.go
package keeper

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// FeeGuard vetoes cranks whose estimated cost exceeds the lamport ceiling.
// A veto is a deliberate cost-avoidance decision, never a failure.
type FeeGuard struct {
	maxLamports uint64
	logger      *zap.Logger
}

func NewFeeGuard(maxLamports uint64, logger *zap.Logger) *FeeGuard {
	return &FeeGuard{
		maxLamports: maxLamports,
		logger:      logger.Named("fee-guard"),
	}
}

// Check estimates the cost of the prepared message and reports whether the
// crank must be skipped. A node that returns no estimate does not veto:
// the ceiling bounds actual spend, and starving cranks on a transient RPC
// quirk costs more than one cheap transaction.
func (g *FeeGuard) Check(ctx context.Context, ledger Ledger, msg *solana.Message) (uint64, bool, error) {
	fee, err := ledger.FeeForMessage(ctx, msg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to estimate fee: %w", err)
	}
	if fee == nil {
		g.logger.Warn("RPC returned no fee estimate, proceeding")
		return 0, false, nil
	}
	if *fee > g.maxLamports {
		g.logger.Warn("Fee estimate above ceiling, skipping crank",
			zap.Uint64("estimated_lamports", *fee),
			zap.Uint64("max_lamports", g.maxLamports))
		return *fee, true, nil
	}
	return *fee, false, nil
}
