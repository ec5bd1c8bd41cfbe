// Package pool provides sync.Pool-backed scratch buffers. The tree's
// rebuild uses GlobalKeySlicePool; WordPool has no caller in this
// module. It intentionally stops at pooling: no goroutines are spawned
// here.
package pool

import "sync"

// WordPool recycles 32-byte scratch buffers.
type WordPool struct {
	pool sync.Pool
}

// NewWordPool creates an empty WordPool.
func NewWordPool() *WordPool {
	return &WordPool{
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32)
				return &b
			},
		},
	}
}

// Get returns a zeroed 32-byte scratch slice.
func (p *WordPool) Get() []byte {
	b := *p.pool.Get().(*[]byte)
	for i := range b {
		b[i] = 0
	}
	return b
}

// Put returns a scratch slice to the pool.
func (p *WordPool) Put(b []byte) {
	if len(b) == 32 {
		p.pool.Put(&b)
	}
}

// GlobalWordPool is a process-wide WordPool, convenient for call sites
// that do not want to thread a pool reference through.
var GlobalWordPool = NewWordPool()

// KeySlicePool recycles []byte slices sized for a variable number of
// H256 keys (32 bytes each), used to collect the current leaf keys when
// the tree rebuilds after an Update.
type KeySlicePool struct {
	pool sync.Pool
}

// NewKeySlicePool creates an empty KeySlicePool.
func NewKeySlicePool() *KeySlicePool {
	return &KeySlicePool{
		pool: sync.Pool{
			New: func() interface{} {
				s := make([][32]byte, 0, 64)
				return &s
			},
		},
	}
}

// Get returns an empty, zero-length slice with spare capacity.
func (p *KeySlicePool) Get() [][32]byte {
	s := *p.pool.Get().(*[][32]byte)
	return s[:0]
}

// Put returns a slice to the pool for reuse.
func (p *KeySlicePool) Put(s [][32]byte) {
	p.pool.Put(&s)
}

// GlobalKeySlicePool is a process-wide KeySlicePool.
var GlobalKeySlicePool = NewKeySlicePool()
