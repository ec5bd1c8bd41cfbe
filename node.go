package smt

// NodeKind identifies which of the tree's node shapes a Node value holds.
//
// A tree with two or more leaves needs a way to represent the point
// where two non-zero subtrees meet (a "fork"), beyond the plain Leaf
// and MergeWithZero shapes. This implementation stores that fork
// explicitly as NodeKindBranch rather than overloading MergeWithZero
// for it (see DESIGN.md, "Node storage: three kinds, not two") -- it is
// hashed with the canonical two-non-zero-children formula and is
// otherwise invisible from the outside: Tree and MerkleProof never
// expose it.
type NodeKind uint8

const (
	NodeKindLeaf NodeKind = iota
	NodeKindMergeWithZero
	NodeKindBranch
)

// Node is a tagged union over the tree's node shapes. Only the fields
// matching Kind are meaningful.
type Node struct {
	Kind NodeKind

	// NodeKindLeaf
	LeafKey   H256
	LeafValue H256

	// NodeKindMergeWithZero: base_node is the hash of the non-zero
	// subtree ZeroCount levels below the level this record is hashed
	// at; ZeroBits records, bit i for the i-th compressed level
	// (counting up from base_node), whether the non-zero child was the
	// left (0) or right (1) child at that level.
	BaseNode  H256
	ZeroBits  H256
	ZeroCount uint8

	// NodeKindBranch: two non-zero children at a single height.
	Left  H256
	Right H256
}

// LeafNode constructs a Leaf node value.
func LeafNode(key, value H256) Node {
	return Node{Kind: NodeKindLeaf, LeafKey: key, LeafValue: value}
}

// MergeWithZeroNode constructs a MergeWithZero node value.
func MergeWithZeroNode(baseNode H256, zeroBits H256, zeroCount uint8) Node {
	return Node{Kind: NodeKindMergeWithZero, BaseNode: baseNode, ZeroBits: zeroBits, ZeroCount: zeroCount}
}

// BranchNode constructs a two-non-zero-children Branch node value.
func BranchNode(left, right H256) Node {
	return Node{Kind: NodeKindBranch, Left: left, Right: right}
}

// leafHash computes H(key || value || 0x00), the canonical hash of a
// leaf binding. A zero value hashes to zero by this convention, which is
// the load-bearing identity between "absent" and "explicitly zero".
func leafHash(key, value H256, newHasher HasherFactory) H256 {
	if value.IsZero() {
		return ZeroH256
	}
	h := newHasher()
	h.WriteH256(key)
	h.WriteH256(value)
	h.WriteByte(0x00)
	return h.Finish()
}

// branchHash computes H(0x01 || height || L || R), the binary merge of
// two non-zero children at the given height.
func branchHash(height uint8, left, right H256, newHasher HasherFactory) H256 {
	h := newHasher()
	h.WriteByte(0x01)
	h.WriteByte(height)
	h.WriteH256(left)
	h.WriteH256(right)
	return h.Finish()
}

// mergeWithZeroHash computes H(height || base_node || zero_bits ||
// zero_count), the hash of a compressed zero-sibling chain whose
// topmost level is height.
func mergeWithZeroHash(height uint8, baseNode, zeroBits H256, zeroCount uint8, newHasher HasherFactory) H256 {
	h := newHasher()
	h.WriteByte(height)
	h.WriteH256(baseNode)
	h.WriteH256(zeroBits)
	h.WriteByte(zeroCount)
	return h.Finish()
}

// Hash returns the node's canonical hash, as it would be read at the
// given absolute tree height (0 = leaf level, 255 = root level). Leaf
// hashes do not depend on height; MergeWithZero and Branch hashes do.
func (n Node) Hash(height uint8, newHasher HasherFactory) H256 {
	switch n.Kind {
	case NodeKindLeaf:
		return leafHash(n.LeafKey, n.LeafValue, newHasher)
	case NodeKindMergeWithZero:
		return mergeWithZeroHash(height, n.BaseNode, n.ZeroBits, n.ZeroCount, newHasher)
	case NodeKindBranch:
		return branchHash(height, n.Left, n.Right, newHasher)
	default: // coverage-ignore
		return ZeroH256
	}
}
