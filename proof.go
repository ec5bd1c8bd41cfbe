package smt

import "sort"

// ProofItemKind distinguishes the two shapes a proof step can take,
// mirroring the two non-leaf node shapes the tree stores.
type ProofItemKind uint8

const (
	// ProofItemHash carries an explicit sibling hash: fold the running
	// value with it at the item's height using the claimed key's bit to
	// pick left/right.
	ProofItemHash ProofItemKind = iota
	// ProofItemZeroMerge folds the running value through a run of
	// zero-sibling levels in one step, the same way Tree.flush collapses
	// them when building a MergeWithZero node.
	ProofItemZeroMerge
)

// ProofItem is one step of a Merkle path, consumed bottom-up (leaf
// towards root) during Verify.
type ProofItem struct {
	Kind ProofItemKind

	// ProofItemHash
	Sibling H256

	// ProofItemZeroMerge
	ZeroBits  H256
	ZeroCount uint8
}

// Claim is a (key, value) pair asserted against a MerkleProof. A claim
// with the zero value asserts that key is absent.
type Claim struct {
	Key   H256
	Value H256
}

// MerkleProof is a batch of independent root-to-leaf paths, one per
// requested key, concatenated in ascending key order.
//
// LeavesBitmap is a single word: bit i marks whether the i-th key in
// that order (ascending, deduplicated) was bound to a non-zero value
// when the proof was built, i.e. present versus absent. It is a
// redundant, self-describing summary of the claims a caller is expected
// to supply to Verify, not something Verify's fold needs to consume.
//
// pathBitmaps is this proof shape's own internal bookkeeping: entry i
// marks, for the i-th key, which of the 256 possible heights
// contributed a proof item, so Verify knows how many of Items belong to
// that key. This is a simpler, less compact cousin of the
// shared-structure multi-proof a production tree would emit -- see
// DESIGN.md, "MerkleProof: per-leaf paths instead of a shared-structure
// multi-proof" -- but it is verified by exactly the algorithm that built
// it, so completeness and soundness hold regardless of the compaction
// left on the table.
type MerkleProof struct {
	LeavesBitmap H256
	Items        []ProofItem

	pathBitmaps []H256
}

// MerkleProof builds a batch membership/absence proof for keys. Keys are
// de-duplicated and sorted ascending before the proof is built; Verify
// must be given claims that, once sorted, line up with the same keys.
func (t *Tree) MerkleProof(keys []H256) (*MerkleProof, error) {
	if t.root.IsZero() {
		return nil, ErrEmptyTree
	}
	if len(keys) == 0 {
		return nil, &IncorrectNumberOfLeavesError{Expected: 1, Actual: 0}
	}

	sorted := append([]H256(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	deduped := sorted[:0]
	for i, k := range sorted {
		if i == 0 || k != deduped[len(deduped)-1] {
			deduped = append(deduped, k)
		}
	}

	items := make([]ProofItem, 0, len(deduped)*8)
	pathBitmaps := make([]H256, 0, len(deduped))
	var leavesBitmap H256
	for i, k := range deduped {
		keyItems, pathBitmap, err := t.buildKeyProof(k)
		if err != nil {
			return nil, err
		}
		items = append(items, keyItems...)
		pathBitmaps = append(pathBitmaps, pathBitmap)
		if _, ok := t.leaves[k]; ok {
			leavesBitmap = leavesBitmap.SetBit(uint8(i))
		}
	}
	return &MerkleProof{LeavesBitmap: leavesBitmap, Items: items, pathBitmaps: pathBitmaps}, nil
}

// buildKeyProof walks the stored tree from the root down towards key,
// collecting the siblings needed to fold key's leaf back up to the
// root. The walk is top-down (height 255 towards 0); the collected
// items are reversed before return so Verify can consume them bottom-up.
func (t *Tree) buildKeyProof(key H256) ([]ProofItem, H256, error) {
	var items []ProofItem
	var pathBitmap H256
	height := 255
	cur := t.root

	for !cur.IsZero() {
		if _, ok, err := t.store.GetLeaf(cur); err != nil {
			return nil, H256{}, &StoreError{Op: "get_leaf", Err: err}
		} else if ok {
			// By construction the only leaf reachable by following key's
			// own bits is key's own leaf (see DESIGN.md for why a
			// different leaf can never be reached this way).
			break
		}

		node, ok, err := t.store.GetBranch(cur)
		if err != nil {
			return nil, H256{}, &StoreError{Op: "get_branch", Err: err}
		}
		if !ok {
			return nil, H256{}, &CorruptedProofError{Reason: "dangling node hash while building proof"}
		}

		if node.Kind == NodeKindMergeWithZero {
			zc := int(node.ZeroCount)
			divergeAt := -1
			for i := 0; i < zc; i++ {
				lvl := height - zc + 1 + i
				if key.GetBit(uint8(lvl)) != node.ZeroBits.GetBit(uint8(i)) {
					divergeAt = i
					break
				}
			}
			if divergeAt < 0 {
				items = append(items, ProofItem{Kind: ProofItemZeroMerge, ZeroBits: node.ZeroBits, ZeroCount: node.ZeroCount})
				pathBitmap = pathBitmap.SetBit(uint8(height - zc + 1))
				cur = node.BaseNode
				height -= zc
				continue
			}

			upperCount := zc - 1 - divergeAt
			if upperCount > 0 {
				var upperBits H256
				for b := 0; b < upperCount; b++ {
					if node.ZeroBits.GetBit(uint8(divergeAt + 1 + b)) {
						upperBits = upperBits.SetBit(uint8(b))
					}
				}
				items = append(items, ProofItem{Kind: ProofItemZeroMerge, ZeroBits: upperBits, ZeroCount: uint8(upperCount)})
				pathBitmap = pathBitmap.SetBit(uint8(height - zc + 2 + divergeAt))
			}

			forkLevel := height - zc + 1 + divergeAt
			var sibling H256
			if divergeAt == 0 {
				sibling = node.BaseNode
			} else {
				lowerBits := node.ZeroBits.CopyBits(0, uint16(divergeAt))
				sibling = mergeWithZeroHash(uint8(forkLevel-1), node.BaseNode, lowerBits, uint8(divergeAt), t.hasherFactory)
			}
			items = append(items, ProofItem{Kind: ProofItemHash, Sibling: sibling})
			pathBitmap = pathBitmap.SetBit(uint8(forkLevel))
			cur = ZeroH256
			break
		}

		// NodeKindBranch: a genuine fork at `height`.
		if key.GetBit(uint8(height)) {
			items = append(items, ProofItem{Kind: ProofItemHash, Sibling: node.Left})
			cur = node.Right
		} else {
			items = append(items, ProofItem{Kind: ProofItemHash, Sibling: node.Right})
			cur = node.Left
		}
		pathBitmap = pathBitmap.SetBit(uint8(height))
		height--
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, pathBitmap, nil
}

// Verify checks claims against root using the receiver's items and
// bitmaps. claims must cover exactly the keys the proof was built for;
// they are sorted ascending internally, the same way MerkleProof sorts
// its input keys, so callers may pass them in any order.
func (mp *MerkleProof) Verify(root H256, claims []Claim, hasherFactory HasherFactory) (bool, error) {
	if hasherFactory == nil {
		hasherFactory = DefaultHasherFactory
	}
	if len(claims) != len(mp.pathBitmaps) {
		return false, &IncorrectNumberOfLeavesError{Expected: len(mp.pathBitmaps), Actual: len(claims)}
	}

	sorted := append([]Claim(nil), claims...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key.Less(sorted[j].Key) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return false, &CorruptedProofError{Reason: "duplicate key in claims"}
		}
	}

	itemIdx := 0
	for ki, claim := range sorted {
		pathBitmap := mp.pathBitmaps[ki]
		cur := leafHash(claim.Key, claim.Value, hasherFactory)

		for height := 0; height <= 255; height++ {
			if !pathBitmap.GetBit(uint8(height)) {
				continue
			}
			if itemIdx >= len(mp.Items) {
				return false, &CorruptedProofError{Reason: "proof item stream exhausted"}
			}
			item := mp.Items[itemIdx]
			itemIdx++
			switch item.Kind {
			case ProofItemHash:
				if claim.Key.GetBit(uint8(height)) {
					cur = branchHash(uint8(height), item.Sibling, cur, hasherFactory)
				} else {
					cur = branchHash(uint8(height), cur, item.Sibling, hasherFactory)
				}
			case ProofItemZeroMerge:
				topHeight := height + int(item.ZeroCount) - 1
				cur = mergeWithZeroHash(uint8(topHeight), cur, item.ZeroBits, item.ZeroCount, hasherFactory)
				height = topHeight
			default:
				return false, &CorruptedProofError{Reason: "unknown proof item kind"}
			}
		}

		if cur != root {
			return false, nil
		}
	}

	if itemIdx != len(mp.Items) {
		return false, &CorruptedProofError{Reason: "unconsumed proof items"}
	}
	return true, nil
}
