// internal/keeper/oracle_test.go
package keeper

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOracleCheck(t *testing.T) {
	slabKey := solana.NewWallet().PublicKey()
	oracleKey := solana.NewWallet().PublicKey()
	accounts := map[solana.PublicKey][]byte{
		slabKey:   {0xde, 0xad},
		oracleKey: {0xbe, 0xef},
	}

	tests := []struct {
		name    string
		slot    uint64
		decoder stubDecoder
		want    Verdict
	}{
		{
			name:    "fresh slab",
			slot:    1010,
			decoder: stubDecoder{slabSlot: 1000, oracleSlot: 1010},
			want:    Verdict{Stale: false, ObservedSlot: 1000, ReferenceSlot: 1010},
		},
		{
			name:    "stale slab",
			slot:    1100,
			decoder: stubDecoder{slabSlot: 1000, oracleSlot: 1100},
			want:    Verdict{Stale: true, ObservedSlot: 1000, ReferenceSlot: 1100},
		},
		{
			name:    "exactly at threshold is fresh",
			slot:    1025,
			decoder: stubDecoder{slabSlot: 1000, oracleSlot: 1025},
			want:    Verdict{Stale: false, ObservedSlot: 1000, ReferenceSlot: 1025},
		},
		{
			name:    "chain tip ahead of oracle reference",
			slot:    1100,
			decoder: stubDecoder{slabSlot: 1000, oracleSlot: 900},
			want:    Verdict{Stale: true, ObservedSlot: 1000, ReferenceSlot: 1100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockLedger{slot: tt.slot, accounts: accounts}
			oracle := NewOracle(slabKey, oracleKey, 25, tt.decoder, zaptest.NewLogger(t))

			verdict, err := oracle.Check(context.Background(), conn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict)
		})
	}
}

func TestOracleCheckUnreadableSlabIsStale(t *testing.T) {
	slabKey := solana.NewWallet().PublicKey()
	oracleKey := solana.NewWallet().PublicKey()

	conn := &mockLedger{slot: 1000, accounts: map[solana.PublicKey][]byte{}}
	oracle := NewOracle(slabKey, oracleKey, 25, stubDecoder{}, zaptest.NewLogger(t))

	verdict, err := oracle.Check(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, Verdict{Stale: true}, verdict, "missing accounts must bias toward cranking")
}

func TestOracleCheckUndecodableSlabIsStale(t *testing.T) {
	slabKey := solana.NewWallet().PublicKey()
	oracleKey := solana.NewWallet().PublicKey()
	accounts := map[solana.PublicKey][]byte{
		slabKey:   {0x01},
		oracleKey: {0x02},
	}

	conn := &mockLedger{slot: 1000, accounts: accounts}
	decoder := stubDecoder{slabErr: errors.New("account data too short")}
	oracle := NewOracle(slabKey, oracleKey, 25, decoder, zaptest.NewLogger(t))

	verdict, err := oracle.Check(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, Verdict{Stale: true}, verdict)
}

func TestOracleCheckSlotFailurePropagates(t *testing.T) {
	conn := &mockLedger{slotErr: errors.New("connection refused")}
	oracle := NewOracle(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), 25, stubDecoder{}, zaptest.NewLogger(t))

	_, err := oracle.Check(context.Background(), conn)
	require.Error(t, err, "a dead connection must surface to the loop for re-acquisition")
}
