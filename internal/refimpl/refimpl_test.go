package refimpl

import "testing"

func TestComputeRootEmpty(t *testing.T) {
	var zero Word
	if got := ComputeRoot(nil); got != zero {
		t.Fatal("ComputeRoot of no leaves should be the zero word")
	}
}

func TestComputeRootDeterministic(t *testing.T) {
	leaves := map[Word]Word{
		{1}: {2},
		{3}: {4},
	}
	if ComputeRoot(leaves) != ComputeRoot(leaves) {
		t.Fatal("ComputeRoot should be deterministic for the same leaf set")
	}
}

func TestComputeRootSensitiveToLeafSet(t *testing.T) {
	a := ComputeRoot(map[Word]Word{{1}: {2}})
	b := ComputeRoot(map[Word]Word{{1}: {2}, {3}: {4}})
	if a == b {
		t.Fatal("adding a leaf should change the root")
	}
}
