// Package refimpl is a second, independently written implementation of
// the tree's compressed root computation, used only by tests as a
// cross-check oracle: it shares no code with the main package, so a bug
// in one is very unlikely to be mirrored by a matching bug in the
// other. It hashes with golang.org/x/crypto/sha3 (Keccak) rather than
// the main package's default Blake2b, so tests drive the real Tree with
// a Keccak-based Hasher (see Keccak256Hasher) when comparing roots.
package refimpl

import "golang.org/x/crypto/sha3"

// Word is a bare 32-byte word, kept independent of the main package's
// H256 so this package cannot accidentally inherit a broken method.
type Word [32]byte

func keccak(chunks ...[]byte) Word {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out Word
	copy(out[:], h.Sum(nil))
	return out
}

func bit(w Word, i int) bool {
	return w[i/8]&(1<<(uint(i)%8)) != 0
}

func setBit(w Word, i int) Word {
	w[i/8] |= 1 << (uint(i) % 8)
	return w
}

// leafHash computes H(key || value || 0x00); a zero value hashes to the
// zero word.
func leafHash(key, value Word) Word {
	var zero Word
	if value == zero {
		return zero
	}
	return keccak(key[:], value[:], []byte{0x00})
}

func branchHash(height int, left, right Word) Word {
	return keccak([]byte{0x01}, []byte{byte(height)}, left[:], right[:])
}

func mergeWithZeroHash(height int, base, zeroBits Word, zeroCount int) Word {
	return keccak([]byte{byte(height)}, base[:], zeroBits[:], []byte{byte(zeroCount)})
}

// ComputeRoot independently recomputes the compressed sparse Merkle root
// for a leaf set, by the same shape of recursion the main package uses,
// written from scratch against Word/Keccak instead of H256/Blake2b.
func ComputeRoot(leaves map[Word]Word) Word {
	var zero Word
	if len(leaves) == 0 {
		return zero
	}
	keys := make([]Word, 0, len(leaves))
	for k := range leaves {
		keys = append(keys, k)
	}
	base, zeroBits, zeroCount := fold(255, keys, leaves)
	return flush(base, zeroBits, zeroCount, 255)
}

func flush(base, zeroBits Word, zeroCount int, height int) Word {
	var zero Word
	if base == zero && zeroCount == 0 {
		return zero
	}
	if zeroCount == 0 {
		return base
	}
	return mergeWithZeroHash(height, base, zeroBits, zeroCount)
}

// fold returns (base, zeroBits, zeroCount) for the subtree spanning
// keys at the given height downward, in the same unmaterialized-pending
// shape the main package's build/flush split uses, named differently on
// purpose.
func fold(height int, keys []Word, leaves map[Word]Word) (Word, Word, int) {
	var zero Word
	if len(keys) == 1 {
		k := keys[0]
		lh := leafHash(k, leaves[k])
		if height <= 0 {
			return lh, zero, 0
		}
		var zeroBits Word
		for i := 0; i < height; i++ {
			if bit(k, i+1) {
				zeroBits = setBit(zeroBits, i)
			}
		}
		return lh, zeroBits, height
	}
	var left, right []Word
	for _, k := range keys {
		if bit(k, height) {
			right = append(right, k)
		} else {
			left = append(left, k)
		}
	}
	var lBase, lBits Word
	lCount := 0
	haveLeft := len(left) > 0
	if haveLeft {
		lBase, lBits, lCount = fold(height-1, left, leaves)
	}
	var rBase, rBits Word
	rCount := 0
	haveRight := len(right) > 0
	if haveRight {
		rBase, rBits, rCount = fold(height-1, right, leaves)
	}

	switch {
	case !haveLeft && !haveRight:
		return zero, zero, 0
	case !haveLeft:
		return rBase, setBit(rBits, rCount), rCount + 1
	case !haveRight:
		return lBase, lBits, lCount + 1
	default:
		lh := flush(lBase, lBits, lCount, height-1)
		rh := flush(rBase, rBits, rCount, height-1)
		return branchHash(height, lh, rh), zero, 0
	}
}
