// internal/keeper/layout.go
package keeper

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Anchor account data starts with an 8-byte account discriminator.
const discriminatorLen = 8

// OffsetDecoder reads a little-endian u64 slot field at a configured byte
// offset past the discriminator. The offsets come from the deployed
// program's account layout; the decoder makes no further assumptions
// about the surrounding bytes.
type OffsetDecoder struct {
	SlabSlotOffset   uint64
	OracleSlotOffset uint64
}

func (d OffsetDecoder) DecodeSlabSlot(data []byte) (uint64, error) {
	return decodeSlotAt(data, discriminatorLen+d.SlabSlotOffset)
}

func (d OffsetDecoder) DecodeOracleSlot(data []byte) (uint64, error) {
	return decodeSlotAt(data, discriminatorLen+d.OracleSlotOffset)
}

func decodeSlotAt(data []byte, offset uint64) (uint64, error) {
	if uint64(len(data)) < offset+8 {
		return 0, fmt.Errorf("account data too short: %d bytes, slot field at offset %d", len(data), offset)
	}
	decoder := bin.NewBinDecoder(data[offset:])
	return decoder.ReadUint64(bin.LE)
}
