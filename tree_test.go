package smt

import (
	"testing"

	"github.com/latticefold/smt/internal/refimpl"
)

func key(b byte) H256 {
	var h H256
	h[0] = b
	return h
}

func value(b byte) H256 {
	var h H256
	h[0] = b + 1 // never zero for b in [0,254]
	return h
}

func TestEmptyTreeInvariants(t *testing.T) {
	tree := Default()
	if !tree.IsEmpty() {
		t.Fatal("fresh tree should be empty")
	}
	if !tree.Root().IsZero() {
		t.Fatal("fresh tree root should be zero")
	}
	got, err := tree.Get(key(1))
	if err != nil {
		t.Fatalf("Get on empty tree failed: %v", err)
	}
	if !got.IsZero() {
		t.Fatal("Get on empty tree should return zero")
	}
}

func TestUpdateThenGetRoundTrip(t *testing.T) {
	tree := Default()
	k, v := key(1), value(1)
	if _, err := tree.Update(k, v); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := tree.Get(k)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != v {
		t.Fatalf("Get returned %s, want %s", got, v)
	}
	if tree.IsEmpty() {
		t.Fatal("tree with one leaf should not be empty")
	}
}

func TestDeletionRestoresEmptyRoot(t *testing.T) {
	tree := Default()
	k, v := key(7), value(7)
	if _, err := tree.Update(k, v); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	root, err := tree.Update(k, ZeroH256)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !root.IsZero() || !tree.IsEmpty() {
		t.Fatal("deleting the only leaf should empty the tree")
	}
	got, _ := tree.Get(k)
	if !got.IsZero() {
		t.Fatal("deleted key should read back as zero")
	}
}

// TestSameKeyReupdateDoesNotGrowLeafCount mirrors the original Rust test
// suite's expectation that re-updating the same key leaves exactly one
// leaf bound, not two.
func TestSameKeyReupdateDoesNotGrowLeafCount(t *testing.T) {
	tree := Default()
	k := key(3)
	if _, err := tree.Update(k, value(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Update(k, value(99)); err != nil {
		t.Fatal(err)
	}
	if len(tree.leaves) != 1 {
		t.Fatalf("expected exactly 1 leaf after re-updating the same key, got %d", len(tree.leaves))
	}
	got, _ := tree.Get(k)
	if got != value(99) {
		t.Fatalf("expected the latest value to win, got %s", got)
	}
}

// TestUpdateSameKeyStoreSize mirrors the original Rust test suite's
// store.len() check: updating one key leaves exactly one Leaf and one
// MergeWithZero record in the store, and re-updating that same key to a
// different value must not leave the superseded pair behind.
func TestUpdateSameKeyStoreSize(t *testing.T) {
	tree := Default()
	k := key(3)

	if _, err := tree.Update(k, value(3)); err != nil {
		t.Fatal(err)
	}
	if got := tree.StoreRef().Len(); got != 2 {
		t.Fatalf("expected store len 2 after first update, got %d", got)
	}

	if _, err := tree.Update(k, value(99)); err != nil {
		t.Fatal(err)
	}
	if got := tree.StoreRef().Len(); got != 2 {
		t.Fatalf("expected store len 2 after re-updating the same key, got %d", got)
	}
}

// TestDeleteAllLeavesEmptiesStore checks the other end of the commit
// discipline: removing the only leaf must leave the store empty, not
// just the tree's root.
func TestDeleteAllLeavesEmptiesStore(t *testing.T) {
	tree := Default()
	k := key(9)
	if _, err := tree.Update(k, value(9)); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Update(k, ZeroH256); err != nil {
		t.Fatal(err)
	}
	if got := tree.StoreRef().Len(); got != 0 {
		t.Fatalf("expected an empty store after deleting the only leaf, got %d entries", got)
	}
}

// TestUpdateUnrelatedKeyDoesNotOrphanSiblings rebuilds the same two-leaf
// tree with a single value changed and checks that the unaffected
// sibling subtree's nodes are not pruned out from under it: pruning must
// only remove nodes that are actually unreachable from the new root.
func TestUpdateUnrelatedKeyDoesNotOrphanSiblings(t *testing.T) {
	tree := Default()
	k1, k2 := key(1), key(200)
	if _, err := tree.Update(k1, value(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Update(k2, value(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Update(k2, value(222)); err != nil {
		t.Fatal(err)
	}

	got1, err := tree.Get(k1)
	if err != nil {
		t.Fatal(err)
	}
	if got1 != value(1) {
		t.Fatalf("unrelated key's value changed after a sibling update: got %s", got1)
	}
	proof, err := tree.MerkleProof([]H256{k1})
	if err != nil {
		t.Fatalf("MerkleProof failed after sibling update: %v", err)
	}
	ok, err := proof.Verify(tree.Root(), []Claim{{Key: k1, Value: value(1)}}, DefaultHasherFactory)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("unrelated key's membership proof should still verify after a sibling update")
	}
}

func TestDeterministicRoot(t *testing.T) {
	build := func() H256 {
		tree := Default()
		for i := byte(0); i < 10; i++ {
			if _, err := tree.Update(key(i), value(i)); err != nil {
				t.Fatal(err)
			}
		}
		return tree.Root()
	}
	if build() != build() {
		t.Fatal("two trees built from the same updates must have the same root")
	}
}

func TestOrderIndependentRoot(t *testing.T) {
	forward := Default()
	for i := byte(0); i < 8; i++ {
		if _, err := forward.Update(key(i), value(i)); err != nil {
			t.Fatal(err)
		}
	}
	backward := Default()
	for i := byte(7); ; i-- {
		if _, err := backward.Update(key(i), value(i)); err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			break
		}
	}
	if forward.Root() != backward.Root() {
		t.Fatal("root should not depend on insertion order")
	}
}

func TestSiblingSensitivity(t *testing.T) {
	treeA := Default()
	treeB := Default()
	for i := byte(0); i < 5; i++ {
		if _, err := treeA.Update(key(i), value(i)); err != nil {
			t.Fatal(err)
		}
		if _, err := treeB.Update(key(i), value(i)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := treeB.Update(key(5), value(5)); err != nil {
		t.Fatal(err)
	}
	if treeA.Root() == treeB.Root() {
		t.Fatal("adding an extra leaf must change the root")
	}
}

func TestKeccakHasherAgreesWithRefimpl(t *testing.T) {
	tree, err := New(NewMemStore(), NewKeccak256Hasher)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	leaves := make(map[refimpl.Word]refimpl.Word)
	for i := byte(0); i < 6; i++ {
		k, v := key(i), value(i)
		if _, err := tree.Update(k, v); err != nil {
			t.Fatal(err)
		}
		leaves[refimpl.Word(k)] = refimpl.Word(v)
	}

	want := refimpl.ComputeRoot(leaves)
	got := refimpl.Word(tree.Root())
	if got != want {
		t.Fatalf("tree root %x does not match independent refimpl root %x", got, want)
	}
}
