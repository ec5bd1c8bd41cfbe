package smt

import "testing"

func TestLeafHashZeroValueConvention(t *testing.T) {
	h := leafHash(key(1), ZeroH256, DefaultHasherFactory)
	if !h.IsZero() {
		t.Fatal("a leaf with the zero value must hash to the zero word")
	}
}

func TestLeafHashNonZeroValueIsNotZero(t *testing.T) {
	h := leafHash(key(1), value(1), DefaultHasherFactory)
	if h.IsZero() {
		t.Fatal("a non-zero value should not produce a zero leaf hash")
	}
}

func TestBranchHashDeterministicAndAsymmetric(t *testing.T) {
	l, r := key(1), key(2)
	h1 := branchHash(10, l, r, DefaultHasherFactory)
	h2 := branchHash(10, l, r, DefaultHasherFactory)
	if h1 != h2 {
		t.Fatal("branchHash should be deterministic")
	}
	h3 := branchHash(10, r, l, DefaultHasherFactory)
	if h1 == h3 {
		t.Fatal("swapping left/right should change branchHash")
	}
	h4 := branchHash(11, l, r, DefaultHasherFactory)
	if h1 == h4 {
		t.Fatal("changing height should change branchHash")
	}
}

func TestMergeWithZeroHashDistinctFromBranchHash(t *testing.T) {
	base := key(1)
	var zeroBits H256
	mh := mergeWithZeroHash(5, base, zeroBits, 3, DefaultHasherFactory)
	bh := branchHash(5, base, zeroBits, DefaultHasherFactory)
	if mh == bh {
		t.Fatal("mergeWithZeroHash and branchHash must use distinguishable formulae")
	}
}

func TestNodeHashDispatch(t *testing.T) {
	leaf := LeafNode(key(1), value(1))
	if leaf.Hash(0, DefaultHasherFactory) != leafHash(key(1), value(1), DefaultHasherFactory) {
		t.Fatal("Node.Hash should dispatch Leaf nodes to leafHash")
	}

	branch := BranchNode(key(1), key(2))
	if branch.Hash(9, DefaultHasherFactory) != branchHash(9, key(1), key(2), DefaultHasherFactory) {
		t.Fatal("Node.Hash should dispatch Branch nodes to branchHash")
	}

	merge := MergeWithZeroNode(key(1), H256{}, 4)
	if merge.Hash(20, DefaultHasherFactory) != mergeWithZeroHash(20, key(1), H256{}, 4, DefaultHasherFactory) {
		t.Fatal("Node.Hash should dispatch MergeWithZero nodes to mergeWithZeroHash")
	}
}
