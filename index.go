package go_hash_index

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// growThreshold is where an insert requests an expansion: once the item
// count passes 3/2 of the bucket count.
func growThreshold(power uint32) int64 {
	return int64(hashSize(power)) * 3 / 2
}

// Index is a chained hash index over externally owned items, kept at
// bounded average chain length by an incremental doubling expansion that a
// dedicated maintenance worker performs bucket batch by bucket batch.
type Index struct {
	locker *locker
	state  tableState

	newTable tableAllocFn

	stats Stats

	// options
	initialPower uint32
	stripePower  uint32
	bulkMove     int
	limiter      *rate.Limiter
	rebalancer   Rebalancer

	maint *maintainer
}

func NewIndex(opts ...Option) *Index {
	idx := &Index{
		initialPower: defaultHashPower,
		stripePower:  defaultLockStripePower,
		newTable:     allocTable,
		rebalancer:   noopRebalancer{},
	}

	for _, opt := range opts {
		opt(idx)
	}

	if idx.initialPower > maxHashPower {
		zap.L().Warn("initial hash power out of range, clamping",
			zap.Uint32("requested", idx.initialPower),
			zap.Uint32("clamped", uint32(maxHashPower)))
		idx.initialPower = maxHashPower
	}

	primary, err := idx.newTable(hashSize(idx.initialPower))
	if err != nil {
		msg := "failed to allocate the initial hash table"
		zap.L().Error(msg, zap.Error(err))
		panic(msg)
	}

	idx.state = tableState{
		power:   idx.initialPower,
		primary: primary,
	}
	idx.locker = newLocker(idx.stripePower)
	idx.maint = newMaintainer(idx)

	atomic.StoreInt32(&idx.stats.statPower, int32(idx.state.power))
	atomic.StoreInt64(&idx.stats.statTableBytes, idx.state.tableBytes())
	return idx
}

// Find returns the item indexed under key, or nil. Only the one bucket the
// routing rule picks is walked; a miss there never falls back to the other
// table.
func (idx *Index) Find(key []byte, hv uint32) *Item {
	unlock := idx.locker.lock(hv)
	defer unlock()

	it, depth := chainFind(idx.state.bucketSlot(hv), key)
	atomic.AddInt64(&idx.stats.statDepth, int64(depth))
	if it == nil {
		atomic.AddInt64(&idx.stats.statMiss, 1)
		return nil
	}

	atomic.AddInt64(&idx.stats.statHit, 1)
	return it
}

// Insert links it under its key. The caller must have verified, under the
// same lock, that the key is not already indexed; a duplicate breaks the
// routing rule and is not tolerated.
func (idx *Index) Insert(it *Item, hv uint32) {
	unlock := idx.locker.lock(hv)
	it.hv = hv
	chainPrepend(idx.state.bucketSlot(hv), it)
	n := atomic.AddInt64(&idx.stats.statNodes, 1)
	atomic.AddInt64(&idx.stats.statSet, 1)
	needGrow := !idx.state.expanding && n > growThreshold(idx.state.power)
	unlock()

	// only the signal happens on the hot path; the maintenance worker
	// performs the expansion
	if needGrow {
		idx.maint.requestExpand()
	}
}

// Delete unlinks the item indexed under key. Deleting a key that is not
// indexed is a caller bug; callers verify presence under the same lock
// before deleting.
func (idx *Index) Delete(key []byte, hv uint32) {
	unlock := idx.locker.lock(hv)
	defer unlock()

	before := chainBefore(idx.state.bucketSlot(hv), key)
	it := *before
	if it == nil {
		msg := "delete of a key that is not indexed"
		zap.L().Error(msg, zap.ByteString("key", key))
		panic(msg)
	}

	*before = it.next
	it.next = nil
	atomic.AddInt64(&idx.stats.statNodes, -1)
	atomic.AddInt64(&idx.stats.statDel, 1)
}

// startExpand swings the primary table into old and doubles primary. Runs
// on the maintenance worker with the global lock held. Allocation failure
// is survivable: the current table keeps serving, the load factor grows,
// and a later threshold crossing requests the expansion again.
func (idx *Index) startExpand() {
	if idx.state.power >= maxHashPower {
		zap.L().Warn("hash table is already at its maximum power",
			zap.Uint32("power", idx.state.power))
		return
	}
	if err := idx.state.grow(idx.newTable); err != nil {
		zap.L().Warn("hash table expansion skipped, keep serving from the current table",
			zap.Error(err),
			zap.Uint32("power", idx.state.power))
		return
	}

	atomic.StoreInt32(&idx.stats.statPower, int32(idx.state.power))
	atomic.StoreInt64(&idx.stats.statTableBytes, idx.state.tableBytes())
	atomic.StoreInt32(&idx.stats.statExpanding, 1)
	zap.L().Info("hash table expansion starting",
		zap.Uint32("power", idx.state.power),
		zap.String("table_bytes", humanize.IBytes(uint64(idx.state.tableBytes()))))
}

// finishExpand records that the old table has been fully drained and
// dropped. Runs with the global lock held.
func (idx *Index) finishExpand() {
	atomic.StoreInt64(&idx.stats.statTableBytes, idx.state.tableBytes())
	atomic.StoreInt32(&idx.stats.statExpanding, 0)
	atomic.AddInt32(&idx.stats.statGrow, 1)
	zap.L().Info("hash table expansion done",
		zap.Uint32("power", idx.state.power),
		zap.String("table_bytes", humanize.IBytes(uint64(idx.state.tableBytes()))))
}

func (idx *Index) GetStats() Stats {
	return Stats{
		statPower:      atomic.LoadInt32(&idx.stats.statPower),
		statTableBytes: atomic.LoadInt64(&idx.stats.statTableBytes),
		statExpanding:  atomic.LoadInt32(&idx.stats.statExpanding),
		statGrow:       atomic.LoadInt32(&idx.stats.statGrow),
		statNodes:      atomic.LoadInt64(&idx.stats.statNodes),
		statHit:        atomic.LoadInt64(&idx.stats.statHit),
		statMiss:       atomic.LoadInt64(&idx.stats.statMiss),
		statSet:        atomic.LoadInt64(&idx.stats.statSet),
		statDel:        atomic.LoadInt64(&idx.stats.statDel),
		statDepth:      atomic.LoadInt64(&idx.stats.statDepth),
	}
}

var _ IIndex = (*Index)(nil)
