package smt

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyFromAddress derives a tree key from a 20-byte Ethereum-style
// address by left-padding it into a 32-byte word, the same convention
// Solidity mappings use for address keys. It does not hash the address;
// addresses are already uniformly distributed enough for tree balance,
// and keeping the mapping reversible helps debugging.
func KeyFromAddress(addr common.Address) H256 {
	var h H256
	copy(h[32-common.AddressLength:], addr.Bytes())
	return h
}

// KeyFromString derives a tree key by Keccak256-hashing an arbitrary
// byte string, the same hash CKB/Solidity-style systems use to turn a
// named slot into a mapping key.
func KeyFromString(s string) H256 {
	var h H256
	copy(h[:], crypto.Keccak256([]byte(s)))
	return h
}
