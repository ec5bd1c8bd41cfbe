package smt

import "github.com/latticefold/smt/internal/pool"

// Tree is an authenticated key-value map over the full 256-bit key space,
// backed by a content-addressed Store. Every key implicitly holds the
// zero value until Update says otherwise; Update with a zero value is a
// deletion.
//
// Tree keeps its own leaves index (key -> value, non-zero entries only)
// as the source of truth for Update/Get, and rebuilds the tree's node
// structure into Store on every Update. This trades the O(log n)
// incremental update a production tree would do for a much smaller,
// easier-to-get-right construction: a full rebuild from the current
// leaf set, grounded on the same Leaf/MergeWithZero/Branch hash formulae
// the incremental version would use (see DESIGN.md, "Update: rebuild
// instead of incremental path edit").
type Tree struct {
	store         Store
	hasherFactory HasherFactory
	root          H256
	leaves        map[H256]H256
}

// New constructs a Tree over an existing, possibly non-empty Store, with
// an explicit hashing capability. The Store is assumed empty of this
// tree's own history; New does not attempt to recover a leaves index by
// walking the store.
func New(store Store, hasherFactory HasherFactory) (*Tree, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if hasherFactory == nil {
		hasherFactory = DefaultHasherFactory
	}
	return &Tree{
		store:         store,
		hasherFactory: hasherFactory,
		root:          ZeroH256,
		leaves:        make(map[H256]H256),
	}, nil
}

// Default constructs an empty Tree over a fresh MemStore using the
// default Blake2b hashing capability.
func Default() *Tree {
	t, _ := New(NewMemStore(), DefaultHasherFactory)
	return t
}

// Root returns the tree's current root hash. The zero word means the
// tree is empty.
func (t *Tree) Root() H256 {
	return t.root
}

// IsEmpty reports whether the tree currently holds no non-zero leaves.
func (t *Tree) IsEmpty() bool {
	return t.root.IsZero()
}

// StoreRef returns the backing Store.
func (t *Tree) StoreRef() Store {
	return t.store
}

// Get returns the value bound to key, or the zero word if key has never
// been set (or was last set to the zero value).
func (t *Tree) Get(key H256) (H256, error) {
	if v, ok := t.leaves[key]; ok {
		return v, nil
	}
	return ZeroH256, nil
}

// Update binds key to value and returns the tree's new root. Binding a
// key to the zero value removes it. Update always recomputes the whole
// tree from the current leaf set; see the Tree docstring. Nodes that
// were reachable from the old root and are not reachable from the new
// one are removed from the Store before Update returns, so nothing
// outside the current root's reachable set survives the call.
func (t *Tree) Update(key, value H256) (H256, error) {
	oldRoot := t.root
	if value.IsZero() {
		delete(t.leaves, key)
	} else {
		t.leaves[key] = value
	}
	root, err := t.recompute()
	if err != nil {
		return ZeroH256, err
	}
	if err := t.pruneUnreachable(oldRoot, root); err != nil {
		return ZeroH256, err
	}
	t.root = root
	return root, nil
}

// pruneUnreachable removes every node reachable from oldRoot that is not
// also reachable from newRoot. recompute has already inserted every node
// the new root needs by the time this runs, so it is safe to compute
// both reachable sets before removing anything.
func (t *Tree) pruneUnreachable(oldRoot, newRoot H256) error {
	if oldRoot.IsZero() || oldRoot == newRoot {
		return nil
	}
	kept := make(map[H256]struct{})
	if err := t.collectReachable(newRoot, kept); err != nil {
		return err
	}
	stale := make(map[H256]struct{})
	if err := t.collectReachable(oldRoot, stale); err != nil {
		return err
	}
	for h := range stale {
		if _, ok := kept[h]; ok {
			continue
		}
		if err := t.store.Remove(h); err != nil {
			return &StoreError{Op: "remove", Err: err}
		}
	}
	return nil
}

// collectReachable walks the node graph rooted at h, recording every
// reachable hash into out. It only reads the Store, so it is safe to
// call with a root whose nodes have since been superseded, as long as
// they have not yet been removed.
func (t *Tree) collectReachable(h H256, out map[H256]struct{}) error {
	if h.IsZero() {
		return nil
	}
	if _, seen := out[h]; seen {
		return nil
	}
	if _, ok, err := t.store.GetLeaf(h); err != nil {
		return &StoreError{Op: "get_leaf", Err: err}
	} else if ok {
		out[h] = struct{}{}
		return nil
	}
	node, ok, err := t.store.GetBranch(h)
	if err != nil {
		return &StoreError{Op: "get_branch", Err: err}
	}
	if !ok {
		return nil
	}
	out[h] = struct{}{}
	switch node.Kind {
	case NodeKindBranch:
		if err := t.collectReachable(node.Left, out); err != nil {
			return err
		}
		return t.collectReachable(node.Right, out)
	case NodeKindMergeWithZero:
		return t.collectReachable(node.BaseNode, out)
	default: // coverage-ignore
		return nil
	}
}

// leafHashFor returns the canonical leaf hash for a key currently present
// in t.leaves.
func (t *Tree) leafHashFor(key H256) H256 {
	return leafHash(key, t.leaves[key], t.hasherFactory)
}

// recompute rebuilds the tree's node structure from the current leaves
// index, storing every node it creates, and returns the new root.
func (t *Tree) recompute() (H256, error) {
	if len(t.leaves) == 0 {
		return ZeroH256, nil
	}
	raw := pool.GlobalKeySlicePool.Get()
	defer pool.GlobalKeySlicePool.Put(raw)
	for k := range t.leaves {
		raw = append(raw, [32]byte(k))
	}
	keys := make([]H256, len(raw))
	for i, r := range raw {
		keys[i] = H256(r)
	}
	res, err := t.build(255, keys)
	if err != nil {
		return ZeroH256, err
	}
	return t.flush(res, 255), nil
}

// pending is an as-yet-possibly-unmaterialized subtree result: either
// empty, or a base hash (an already-stored Leaf or Branch) together with
// a run of zeroCount zero-sibling levels accumulated above it that have
// not yet been folded into a stored MergeWithZero node.
type pending struct {
	empty     bool
	base      H256
	zeroBits  H256
	zeroCount uint8
}

// build recursively partitions keys by bit `height`, from 255 down to 0,
// returning a pending result for the subtree they occupy. A subtree with
// a single key short-circuits immediately to that key's leaf, letting
// the caller accumulate the skipped levels as a zero run instead of
// recursing through each of them individually.
func (t *Tree) build(height int, keys []H256) (pending, error) {
	if len(keys) == 1 {
		k := keys[0]
		lh := t.leafHashFor(k)
		node := LeafNode(k, t.leaves[k])
		if err := t.store.Insert(lh, node); err != nil {
			return pending{}, &StoreError{Op: "insert leaf", Err: err}
		}
		return singleKeyPending(k, lh, height), nil
	}

	var left, right []H256
	for _, k := range keys {
		if k.GetBit(uint8(height)) {
			right = append(right, k)
		} else {
			left = append(left, k)
		}
	}

	leftRes := pending{empty: true}
	rightRes := pending{empty: true}
	var err error
	if len(left) > 0 {
		leftRes, err = t.build(height-1, left)
		if err != nil {
			return pending{}, err
		}
	}
	if len(right) > 0 {
		rightRes, err = t.build(height-1, right)
		if err != nil {
			return pending{}, err
		}
	}

	switch {
	case leftRes.empty && rightRes.empty:
		return pending{empty: true}, nil
	case leftRes.empty:
		return extendZero(rightRes, true), nil
	case rightRes.empty:
		return extendZero(leftRes, false), nil
	default:
		leftHash := t.flush(leftRes, uint8(height-1))
		rightHash := t.flush(rightRes, uint8(height-1))
		node := BranchNode(leftHash, rightHash)
		h := node.Hash(uint8(height), t.hasherFactory)
		if err := t.store.Insert(h, node); err != nil {
			return pending{}, &StoreError{Op: "insert branch", Err: err}
		}
		return pending{base: h}, nil
	}
}

// singleKeyPending returns the pending result for a subtree that
// bottoms out at key's leaf while still being evaluated at height (the
// level this subtree occupies as seen by its parent). Heights 1..height
// above the leaf collapse into one zero run recorded directly, instead
// of recursing one level at a time only to hit this same base case
// again; height 0 needs no run at all, since the leaf already sits at
// the bottom.
func singleKeyPending(k, leafHash H256, height int) pending {
	if height <= 0 {
		return pending{base: leafHash}
	}
	var zeroBits H256
	for i := 0; i < height; i++ {
		if k.GetBit(uint8(i + 1)) {
			zeroBits = zeroBits.SetBit(uint8(i))
		}
	}
	return pending{base: leafHash, zeroBits: zeroBits, zeroCount: uint8(height)}
}

// extendZero records one more skipped level above a pending subtree,
// without materializing anything. isRight says which side the pending
// subtree's real occupant was on at the level being skipped.
func extendZero(p pending, isRight bool) pending {
	zb := p.zeroBits
	if isRight {
		zb = zb.SetBit(p.zeroCount)
	}
	return pending{base: p.base, zeroBits: zb, zeroCount: p.zeroCount + 1}
}

// flush materializes a pending result into a concrete, stored hash, as
// seen by a parent at the given height (the height of this subtree
// itself, i.e. one less than a Branch parent's height).
func (t *Tree) flush(p pending, height uint8) H256 {
	if p.empty {
		return ZeroH256
	}
	if p.zeroCount == 0 {
		return p.base
	}
	node := MergeWithZeroNode(p.base, p.zeroBits, p.zeroCount)
	h := node.Hash(height, t.hasherFactory)
	_ = t.store.Insert(h, node)
	return h
}
