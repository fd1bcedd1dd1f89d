// internal/keeper/oracle.go
package keeper

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Oracle answers "is the slab stale?" against a live ledger session.
type Oracle struct {
	slab      solana.PublicKey
	oracle    solana.PublicKey
	threshold uint64
	decoder   SlabDecoder
	logger    *zap.Logger
}

func NewOracle(slab, oracle solana.PublicKey, thresholdSlots uint64, decoder SlabDecoder, logger *zap.Logger) *Oracle {
	return &Oracle{
		slab:      slab,
		oracle:    oracle,
		threshold: thresholdSlots,
		decoder:   decoder,
		logger:    logger.Named("freshness-oracle"),
	}
}

// Check reads the current slot, the slab account and the oracle account,
// then compares the slab's last-refresh slot against the reference using
// the fixed threshold. An unreadable or undecodable account yields
// Stale=true with zeroed slots: a missed refresh is worse than a wasted
// attempt, and the fee guard bounds the waste.
func (o *Oracle) Check(ctx context.Context, ledger Ledger) (Verdict, error) {
	currentSlot, err := ledger.Slot(ctx)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to read current slot: %w", err)
	}

	slabData, err := ledger.AccountData(ctx, o.slab)
	if err != nil {
		o.logger.Warn("Slab account unreadable, treating as stale", zap.Error(err))
		return Verdict{Stale: true}, nil
	}

	oracleData, err := ledger.AccountData(ctx, o.oracle)
	if err != nil {
		o.logger.Warn("Oracle account unreadable, treating as stale", zap.Error(err))
		return Verdict{Stale: true}, nil
	}

	lastRefreshSlot, err := o.decoder.DecodeSlabSlot(slabData)
	if err != nil {
		o.logger.Warn("Could not decode slab account, treating as stale", zap.Error(err))
		return Verdict{Stale: true}, nil
	}

	referenceSlot, err := o.decoder.DecodeOracleSlot(oracleData)
	if err != nil {
		o.logger.Warn("Could not decode oracle account, treating as stale", zap.Error(err))
		return Verdict{Stale: true}, nil
	}

	// The oracle reference can lag the chain tip; staleness is judged
	// against whichever is ahead.
	if currentSlot > referenceSlot {
		referenceSlot = currentSlot
	}

	return Verdict{
		Stale:         referenceSlot > lastRefreshSlot+o.threshold,
		ObservedSlot:  lastRefreshSlot,
		ReferenceSlot: referenceSlot,
	}, nil
}
