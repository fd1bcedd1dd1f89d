// internal/keeper/feeguard_test.go
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

func TestFeeGuardCheck(t *testing.T) {
	tests := []struct {
		name       string
		fee        *uint64
		wantFee    uint64
		wantVetoed bool
	}{
		{name: "below ceiling", fee: feeOf(1000), wantFee: 1000, wantVetoed: false},
		{name: "at ceiling", fee: feeOf(5_000_000), wantFee: 5_000_000, wantVetoed: false},
		{name: "above ceiling", fee: feeOf(6_000_000), wantFee: 6_000_000, wantVetoed: true},
		{name: "no estimate available", fee: nil, wantFee: 0, wantVetoed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockLedger{fee: tt.fee}
			guard := NewFeeGuard(5_000_000, zaptest.NewLogger(t))

			fee, vetoed, err := guard.Check(context.Background(), conn, &solana.Message{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantVetoed, vetoed)
		})
	}
}

func TestFeeGuardCheckTransportError(t *testing.T) {
	conn := &mockLedger{feeErr: errors.New("connection refused")}
	guard := NewFeeGuard(5_000_000, zaptest.NewLogger(t))

	_, vetoed, err := guard.Check(context.Background(), conn, &solana.Message{})
	require.Error(t, err)
	assert.False(t, vetoed, "a transport failure is not an economic veto")
}
