// internal/keeper/keeper.go
package keeper

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Ledger is the capability set the keeper needs from one live RPC session.
// Every call may fail with a transport or ledger-reported error; the
// executor treats them uniformly apart from blockhash-expiry detection.
type Ledger interface {
	Slot(ctx context.Context) (uint64, error)
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	FeeForMessage(ctx context.Context, msg *solana.Message) (*uint64, error)
	Simulate(ctx context.Context, tx *solana.Transaction) error
	Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// AcquireFunc hands out a live ledger session, failing over between
// configured endpoints. Connections are replaced wholesale, never repaired.
type AcquireFunc func(ctx context.Context) (Ledger, error)

// Signer binds the keeper's wallet key to transaction signing.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// Verdict is one freshness snapshot. It is produced fresh on every poll
// and never cached across iterations.
type Verdict struct {
	Stale         bool
	ObservedSlot  uint64
	ReferenceSlot uint64
}

// SlabDecoder extracts the slot fields out of raw account bytes.
// DecodeSlabSlot returns the slab's last-refresh slot, DecodeOracleSlot
// the oracle's reference slot. Implementations own the byte layout; the
// keeper only consumes the decoded integers.
type SlabDecoder interface {
	DecodeSlabSlot(data []byte) (uint64, error)
	DecodeOracleSlot(data []byte) (uint64, error)
}
