package smt

import (
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// blake2bPersonalization is mixed into every Blake2bHasher instance so the
// tree's hash domain never collides with an unrelated use of Blake2b/256
// in the same process or on the wire.
var blake2bPersonalization = [16]byte{'c', 'k', 'b', '-', 'd', 'e', 'f', 'a', 'u', 'l', 't', '-', 'h', 'a', 's', 'h'}

// Hasher is the incremental 256-bit hashing capability the tree is built
// against. It is a capability, not a class hierarchy: a Tree or
// MerkleProof is parameterised by a factory that produces a fresh Hasher
// per hash computation, never by a shared mutable hasher instance.
type Hasher interface {
	WriteH256(h H256)
	WriteByte(b byte)
	Finish() H256
}

// HasherFactory constructs a fresh, zeroed Hasher. Tree takes a
// HasherFactory at construction time and MerkleProof.Verify takes one as
// an argument, rather than either holding global hash state.
type HasherFactory func() Hasher

// Blake2bHasher is the default Hasher: unkeyed Blake2b with a 32-byte
// digest. The personalization string above is written as the first 16
// bytes of every hash input; it is not set in Blake2b's parameter block,
// so digests differ from those of a Blake2b instance personalized with
// the same string.
type Blake2bHasher struct {
	h hash.Hash
}

// NewBlake2bHasher constructs the default hasher capability.
func NewBlake2bHasher() Hasher {
	h, err := blake2b.New(32, nil)
	if err != nil { // coverage-ignore
		// blake2b.New only errors on an invalid key or out-of-range
		// digest size; both are fixed constants here.
		panic(err)
	}
	_, _ = h.Write(blake2bPersonalization[:])
	return &Blake2bHasher{h: h}
}

// WriteH256 feeds all 32 bytes of h into the running hash.
func (b *Blake2bHasher) WriteH256(h H256) {
	_, _ = b.h.Write(h[:])
}

// WriteByte feeds a single domain-separation byte into the running hash.
func (b *Blake2bHasher) WriteByte(v byte) {
	_, _ = b.h.Write([]byte{v})
}

// Finish returns the accumulated digest as an H256. The underlying hasher
// is single-use: callers obtain a fresh one per hash via HasherFactory.
func (b *Blake2bHasher) Finish() H256 {
	var out H256
	copy(out[:], b.h.Sum(nil))
	return out
}

// DefaultHasherFactory is the HasherFactory used by Default()/New() when
// no other capability is supplied.
func DefaultHasherFactory() Hasher {
	return NewBlake2bHasher()
}

// Keccak256Hasher is an alternative Hasher using Keccak256 (as opposed
// to SHA3-256's different padding), the hash Ethereum and CKB contracts
// use on-chain. It has no personalization block, matching how a
// Solidity verifier would compute the same hashes. It exists primarily
// so tests can drive a Tree with a hasher independent of Blake2bHasher
// and cross-check the result against internal/refimpl.
type Keccak256Hasher struct {
	h hash.Hash
}

// NewKeccak256Hasher constructs a Keccak256-based hasher capability.
func NewKeccak256Hasher() Hasher {
	return &Keccak256Hasher{h: sha3.NewLegacyKeccak256()}
}

func (k *Keccak256Hasher) WriteH256(h H256) { _, _ = k.h.Write(h[:]) }
func (k *Keccak256Hasher) WriteByte(v byte) { _, _ = k.h.Write([]byte{v}) }
func (k *Keccak256Hasher) Finish() H256 {
	var out H256
	copy(out[:], k.h.Sum(nil))
	return out
}
