package smt

import (
	"encoding/hex"
	"fmt"
)

// H256 is a 256-bit word treated as a little-endian bit vector: bit 0 is
// the least significant bit of the first byte, bit 255 is the most
// significant bit of the last byte. It is the type of keys, values and
// hashes throughout the tree.
type H256 [32]byte

// ZeroH256 is both the default value for any key and the hash of an absent
// subtree at every height.
var ZeroH256 = H256{}

// NewH256FromHex creates an H256 from a 64-character hex string, with or
// without a 0x prefix.
func NewH256FromHex(s string) (H256, error) {
	s = trimHexPrefix(s)
	if len(s) != 64 {
		return H256{}, fmt.Errorf("hex string must be 64 characters, got %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil { // coverage-ignore
		return H256{}, err
	}
	var h H256
	copy(h[:], raw)
	return h, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0:2] == "0x" {
		return s[2:]
	}
	return s
}

// String returns the hex representation with a 0x prefix.
func (h H256) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero word.
func (h H256) IsZero() bool {
	return h == ZeroH256
}

// Bytes returns a copy of the underlying 32 bytes.
func (h H256) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

// Cmp gives the total order of h and other: -1, 0 or 1. H256 is stored
// little-endian (byte 0 holds bits 0-7, byte 31 holds bits 248-255), so
// the numeric ordering compares from the last byte down to the first --
// equivalently, from bit 255 down to bit 0.
func (h H256) Cmp(other H256) int {
	for i := 31; i >= 0; i-- {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether h sorts before other under Cmp.
func (h H256) Less(other H256) bool {
	return h.Cmp(other) < 0
}

// GetBit returns the bit at index i (0 = LSB of byte 0, 255 = MSB of byte
// 31).
func (h H256) GetBit(i uint8) bool {
	byteIdx := i / 8
	bitIdx := i % 8
	return h[byteIdx]&(1<<bitIdx) != 0
}

// SetBit returns a copy of h with bit i set to 1.
func (h H256) SetBit(i uint8) H256 {
	byteIdx := i / 8
	bitIdx := i % 8
	h[byteIdx] |= 1 << bitIdx
	return h
}

// ClearBit returns a copy of h with bit i set to 0.
func (h H256) ClearBit(i uint8) H256 {
	byteIdx := i / 8
	bitIdx := i % 8
	h[byteIdx] &^= 1 << bitIdx
	return h
}

// IsRight reports the bit of h at the given height: false means the key
// descends to the left child at that height, true means the right child.
func (h H256) IsRight(height uint8) bool {
	return h.GetBit(height)
}

// CopyBits returns a word with bits in [start, end) copied from h and
// every other bit zeroed. end is exclusive and may be up to 256.
func (h H256) CopyBits(start, end uint16) H256 {
	var out H256
	if end > 256 {
		end = 256
	}
	for i := start; i < end; i++ {
		if h.GetBit(uint8(i)) {
			out = out.SetBit(uint8(i))
		}
	}
	return out
}

// ForkHeight returns the smallest height h such that bits h..256 of self
// and other agree: one more than the highest bit index at which they
// differ. Two equal words never fork; ForkHeight returns 256 for them,
// a sentinel the tree never needs to act on since it only compares
// distinct keys.
func (h H256) ForkHeight(other H256) uint16 {
	for height := 255; height >= 0; height-- {
		if h.GetBit(uint8(height)) != other.GetBit(uint8(height)) {
			return uint16(height + 1)
		}
	}
	return 256
}
