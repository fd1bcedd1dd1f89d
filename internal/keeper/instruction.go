// internal/keeper/instruction.go
package keeper

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// CrankInstruction builds the slab refresh instruction: the payer signs
// and pays, the slab is written, the oracle is read.
func CrankInstruction(programID, slab, oracle, payer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: slab, IsWritable: true, IsSigner: false},
			{PublicKey: oracle, IsWritable: false, IsSigner: false},
		},
		crankDiscriminator(),
	)
}

// crankDiscriminator derives the Anchor global instruction selector for
// crank_slab: sha256("global:crank_slab")[:8].
func crankDiscriminator() []byte {
	sum := sha256.Sum256([]byte("global:crank_slab"))
	return sum[:8]
}
