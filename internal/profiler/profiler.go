// Package profiler samples process memory stats around tree operations.
// It is a diagnostic for benchmark/test use, not part of the tree's
// public surface, and it carries no goroutine of its own -- samples are
// taken synchronously by the caller.
package profiler

import (
	"runtime"
	"time"
)

// Snapshot is a point-in-time memory measurement, trimmed to the fields
// useful for judging a Store's growth under repeated updates.
type Snapshot struct {
	Timestamp   time.Time
	HeapAlloc   uint64
	HeapObjects uint64
	NumGC       uint32
}

// StoreProfiler records one Snapshot per call to Sample, alongside the
// Store size observed at that point, so a benchmark can plot store
// growth against heap growth.
type StoreProfiler struct {
	samples    []Snapshot
	storeSizes []int
}

// NewStoreProfiler creates an empty StoreProfiler.
func NewStoreProfiler() *StoreProfiler {
	return &StoreProfiler{}
}

// Sample takes a runtime.MemStats snapshot and records it against the
// given store size.
func (p *StoreProfiler) Sample(storeLen int) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	p.samples = append(p.samples, Snapshot{
		Timestamp:   time.Now(),
		HeapAlloc:   m.HeapAlloc,
		HeapObjects: m.HeapObjects,
		NumGC:       m.NumGC,
	})
	p.storeSizes = append(p.storeSizes, storeLen)
}

// Samples returns the recorded snapshots in call order.
func (p *StoreProfiler) Samples() []Snapshot {
	return p.samples
}

// StoreSizes returns the store sizes recorded alongside each snapshot.
func (p *StoreProfiler) StoreSizes() []int {
	return p.storeSizes
}

// BytesPerStoreEntry estimates average heap bytes per stored node
// between the first and last sample, or 0 if fewer than two samples or
// the store did not grow.
func (p *StoreProfiler) BytesPerStoreEntry() float64 {
	if len(p.samples) < 2 {
		return 0
	}
	first, last := 0, len(p.samples)-1
	deltaEntries := p.storeSizes[last] - p.storeSizes[first]
	if deltaEntries <= 0 {
		return 0
	}
	deltaBytes := int64(p.samples[last].HeapAlloc) - int64(p.samples[first].HeapAlloc)
	if deltaBytes <= 0 {
		return 0
	}
	return float64(deltaBytes) / float64(deltaEntries)
}
