// internal/wallet/wallet_test.go
package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalletRoundTrip(t *testing.T) {
	generated := solana.NewWallet()

	w, err := New(generated.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, generated.PublicKey(), w.PublicKey())
	assert.Equal(t, generated.PublicKey().String(), w.String())
}

func TestNewWalletRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "not base58", key: "0OIl not base58 !!!"},
		{name: "wrong length", key: "3yZe7d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.key)
			assert.Error(t, err)
		})
	}
}

func TestSignTransaction(t *testing.T) {
	generated := solana.NewWallet()
	w, err := New(generated.PrivateKey.String())
	require.NoError(t, err)

	ix := solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: w.PublicKey(), IsWritable: true, IsSigner: true},
		},
		[]byte{0},
	)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{1},
		solana.TransactionPayer(w.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}
