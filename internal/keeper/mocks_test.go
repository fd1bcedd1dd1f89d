// internal/keeper/mocks_test.go
package keeper

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/percolator-keeper/internal/blockchain"
	"github.com/rovshanmuradov/percolator-keeper/internal/wallet"
)

// mockLedger реализует Ledger с предопределенными ответами для тестирования
type mockLedger struct {
	slot         uint64
	slotErr      error
	accounts     map[solana.PublicKey][]byte
	accountErr   map[solana.PublicKey]error
	blockhashErr error
	fee          *uint64
	feeErr       error
	simulateErr  error
	sendErrs     []error // consumed per call; nil entry means success

	feeCalls  int
	simCalls  int
	sendCalls int
}

func (m *mockLedger) Slot(ctx context.Context) (uint64, error) {
	return m.slot, m.slotErr
}

func (m *mockLedger) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	if err := m.accountErr[account]; err != nil {
		return nil, err
	}
	data, ok := m.accounts[account]
	if !ok {
		return nil, blockchain.ErrAccountNotFound
	}
	return data, nil
}

func (m *mockLedger) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	if m.blockhashErr != nil {
		return solana.Hash{}, 0, m.blockhashErr
	}
	return solana.Hash{1}, 1234, nil
}

func (m *mockLedger) FeeForMessage(ctx context.Context, msg *solana.Message) (*uint64, error) {
	m.feeCalls++
	return m.fee, m.feeErr
}

func (m *mockLedger) Simulate(ctx context.Context, tx *solana.Transaction) error {
	m.simCalls++
	return m.simulateErr
}

func (m *mockLedger) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	idx := m.sendCalls
	m.sendCalls++
	if idx < len(m.sendErrs) && m.sendErrs[idx] != nil {
		return solana.Signature{}, m.sendErrs[idx]
	}
	return solana.Signature{2}, nil
}

// stubDecoder возвращает фиксированные слоты вместо разбора байтов
type stubDecoder struct {
	slabSlot   uint64
	oracleSlot uint64
	slabErr    error
	oracleErr  error
}

func (d stubDecoder) DecodeSlabSlot(data []byte) (uint64, error) {
	return d.slabSlot, d.slabErr
}

func (d stubDecoder) DecodeOracleSlot(data []byte) (uint64, error) {
	return d.oracleSlot, d.oracleErr
}

func testSigner(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.New(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

func feeOf(v uint64) *uint64 {
	return &v
}
